package chainbench

import (
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
)

// http headers carrying operation metadata
const (
	HTTPHeaderOpID    = "Opid"
	HTTPHeaderSentAt  = "Sentat"
	HTTPHeaderUnits   = "Units"
	HTTPHeaderErrKind = "Errkind"
)

// HTTPExecutorCreator builds executors that POST operations to a node's
// http endpoint. A request running past Timeout counts as a failed
// operation, not a fatal error.
type HTTPExecutorCreator struct {
	ID      ID
	URL     string // base url, resolved from the config http endpoints if empty
	Timeout time.Duration
}

func (c *HTTPExecutorCreator) Create() (Executor, error) {
	u := c.URL
	if u == "" {
		u = GetConfig().GetHTTPURL(c.ID)
	}
	if u == "" {
		return nil, fmt.Errorf("unknown %s node http url for executor-node communication", c.ID)
	}
	return &HTTPExecutor{url: u, timeout: c.Timeout, client: &fasthttp.Client{}}, nil
}

// HTTPExecutor implements Executor over http, one POST to /<kind>/<key>
// per operation.
type HTTPExecutor struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client

	curOpID uint32
}

func (e *HTTPExecutor) Init() error {
	return nil
}

func (e *HTTPExecutor) Execute(op *Operation) (*OpResult, error) {
	e.curOpID++

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/%s/%d", e.url, op.Kind, op.Key))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set(HTTPHeaderOpID, strconv.FormatUint(uint64(e.curOpID), 10))
	req.Header.Set(HTTPHeaderSentAt, strconv.FormatInt(time.Now().UnixNano(), 10))
	if len(op.Payload) > 0 {
		req.SetBody(op.Payload)
	}

	var err error
	if e.timeout > 0 {
		err = e.client.DoTimeout(req, resp, e.timeout)
	} else {
		err = e.client.Do(req, resp)
	}
	if err != nil {
		if err == fasthttp.ErrTimeout {
			return &OpResult{Success: false, ErrKind: ErrKindTimeout}, nil
		}
		return nil, err
	}

	res := &OpResult{Success: resp.StatusCode() == fasthttp.StatusOK}
	if units := resp.Header.Peek(HTTPHeaderUnits); len(units) > 0 {
		if u, perr := strconv.ParseUint(string(units), 10, 64); perr == nil {
			res.ComputeUnits = u
		}
	}
	if !res.Success {
		res.ErrKind = string(resp.Header.Peek(HTTPHeaderErrKind))
		if res.ErrKind == "" {
			res.ErrKind = ErrKindBackend
		}
	}
	res.Data = append([]byte(nil), resp.Body()...)
	return res, nil
}

func (e *HTTPExecutor) Stop() error {
	return nil
}
