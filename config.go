package chainbench

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/gridtokenx/chainbench/log"
)

var configFile = flag.String("config", "config.json", "configuration file")

// ID is the identifier of one benchmark target node
type ID string

// Config holds the process-wide configuration, loaded from a json file.
// The zero configuration with DefaultBConfig is enough for a simulated run,
// the tcp/unix/http executors need at least one endpoint.
type Config struct {
	// Endpoints maps a node ID to its public url, e.g. "tcp://127.0.0.1:1735"
	Endpoints map[ID]string `json:"endpoints"`

	// HTTPEndpoints maps a node ID to its http url, e.g. "http://127.0.0.1:8080"
	HTTPEndpoints map[ID]string `json:"http_endpoints"`

	ChanBufferSize int `json:"chan_buffer_size"`

	// MultiVersion keeps the value history in the mock node's state store
	MultiVersion bool `json:"multi_version"`

	// Delays maps an operation kind to an emulated execution time in ms,
	// waited out by the mock node before it touches the state store
	Delays map[string]float64 `json:"delays"`

	Benchmark BenchmarkConfig `json:"benchmark"`
}

var config = MakeDefaultConfig()

// GetConfig returns the global configuration
func GetConfig() *Config {
	return &config
}

// MakeDefaultConfig returns a config with one local endpoint and the
// default benchmark parameters
func MakeDefaultConfig() Config {
	return Config{
		Endpoints: map[ID]string{
			"1": "tcp://127.0.0.1:1735",
		},
		HTTPEndpoints: map[ID]string{
			"1": "http://127.0.0.1:8080",
		},
		ChanBufferSize: 1024,
		MultiVersion:   false,
		Benchmark:      DefaultBConfig(),
	}
}

// Load reads the configuration from the file given with the -config flag.
// A missing file keeps the defaults, a malformed one is fatal.
func (c *Config) Load() {
	f, err := os.Open(*configFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warningf("config file %s not found, using defaults", *configFile)
			return
		}
		log.Fatalf("failed to open config file %s: %v", *configFile, err)
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(c); err != nil {
		log.Fatalf("failed to parse config file %s: %v", *configFile, err)
	}
}

// GetEndpoint returns the raw endpoint url of the given node
func (c *Config) GetEndpoint(id ID) string {
	return c.Endpoints[id]
}

// GetHostAddress returns the host:port part of the node's endpoint
func (c *Config) GetHostAddress(id ID) string {
	addr, err := url.Parse(c.Endpoints[id])
	if err != nil {
		log.Errorf("endpoint url parse error for node %s: %v", id, err)
		return ""
	}
	return addr.Host
}

// GetHostPort returns the port part of the node's endpoint
func (c *Config) GetHostPort(id ID) string {
	addr, err := url.Parse(c.Endpoints[id])
	if err != nil {
		log.Errorf("endpoint url parse error for node %s: %v", id, err)
		return ""
	}
	return addr.Port()
}

// GetHTTPURL returns the http url of the given node
func (c *Config) GetHTTPURL(id ID) string {
	return c.HTTPEndpoints[id]
}

// GetHTTPAddress returns the host:port part of the node's http endpoint
func (c *Config) GetHTTPAddress(id ID) string {
	addr, err := url.Parse(c.HTTPEndpoints[id])
	if err != nil {
		log.Errorf("http endpoint url parse error for node %s: %v", id, err)
		return ""
	}
	return addr.Host
}

func (c Config) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%v", err)
	}
	return string(b)
}
