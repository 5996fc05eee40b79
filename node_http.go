package chainbench

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gridtokenx/chainbench/log"
	"github.com/valyala/fasthttp"
)

// runHTTPServer serves operation requests over http, one POST per
// operation to /<kind>/<key>.
func (n *node) runHTTPServer() {
	// prepare handler
	requestHandler := func(ctx *fasthttp.RequestCtx) {
		n.handleOpWithCtx(ctx)
	}

	// http string should be in form of ":8080"
	httpURL, err := url.Parse(GetConfig().GetHTTPURL(n.id))
	if err != nil {
		log.Fatal("http url parse error: ", err)
	}
	port := ":" + httpURL.Port()

	// starting server
	log.Info("http server starting on ", port)
	log.Fatal(fasthttp.ListenAndServe(port, requestHandler))
}

func (n *node) handleOpWithCtx(ctx *fasthttp.RequestCtx) {
	log.Debugf("handling %q", ctx.Path())

	if !ctx.IsPut() && !ctx.IsPost() {
		ctx.Error("unknown handler for this http method", fasthttp.StatusBadRequest)
		log.Errorf("unknown handler for this http method: %q", ctx.Path())
		return
	}

	// the path carries the operation: /<kind>/<key>
	pathParts := strings.Split(string(ctx.Path()), "/")
	if len(pathParts) < 3 {
		ctx.Error("invalid path", fasthttp.StatusBadRequest)
		return
	}

	kindCode := KindCode(pathParts[1])
	if kindCode == KindUnknown {
		ctx.Error("unknown operation kind", fasthttp.StatusBadRequest)
		log.Errorf("unknown operation kind: %s", pathParts[1])
		return
	}

	key, err := strconv.Atoi(pathParts[2])
	if err != nil {
		ctx.Error("invalid path", fasthttp.StatusBadRequest)
		log.Error(err)
		return
	}

	req := &OpRequest{Kind: kindCode, Key: uint32(key)}

	// get the operation metadata headers
	if v := ctx.Request.Header.Peek(HTTPHeaderOpID); len(v) > 0 {
		id, cerr := strconv.ParseUint(string(v), 10, 32)
		if cerr != nil {
			log.Errorf("failed to convert op id header to integer: %v", cerr)
		} else {
			req.OpID = uint32(id)
		}
	}
	if v := ctx.Request.Header.Peek(HTTPHeaderSentAt); len(v) > 0 {
		t, cerr := strconv.ParseInt(string(v), 10, 64)
		if cerr != nil {
			log.Errorf("failed to convert sent-at header to integer: %v", cerr)
		} else {
			req.SentAt = t
		}
	}
	req.Payload = ctx.PostBody()

	reply := n.Execute(req)

	// set the metadata headers before the status so failures carry them too
	ctx.Response.Header.Set(HTTPHeaderOpID, strconv.FormatUint(uint64(reply.OpID), 10))
	ctx.Response.Header.Set(HTTPHeaderUnits, strconv.FormatUint(reply.ComputeUnits, 10))

	if reply.Code != ReplyOK {
		ctx.Response.Header.Set(HTTPHeaderErrKind, reply.ErrKind)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	if len(reply.Data) > 0 {
		ctx.SetBody(reply.Data)
	}
}
