package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut01"
	"github.com/gonuts/mintclient/cashu/nuts/nut02"
	"github.com/gonuts/mintclient/cashu/nuts/nut03"
	"github.com/gonuts/mintclient/cashu/nuts/nut04"
	"github.com/gonuts/mintclient/cashu/nuts/nut05"
	"github.com/gonuts/mintclient/cashu/nuts/nut06"
	"github.com/google/uuid"
)

const maxResponseSize = 10 << 20

var _ Client = (*HTTPClient)(nil)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// defaults to http.DefaultClient
	Doer Doer
	// defaults to discarding logs
	Logger *slog.Logger
	// optional
	Metrics   *Metrics
	UserAgent string
}

// HTTPClient is the Client over HTTP. It keeps no state between
// calls and is safe for concurrent use.
type HTTPClient struct {
	doer      Doer
	logger    *slog.Logger
	metrics   *Metrics
	userAgent string
}

func NewHTTPClient(config Config) *HTTPClient {
	client := &HTTPClient{
		doer:      config.Doer,
		logger:    config.Logger,
		metrics:   config.Metrics,
		userAgent: config.UserAgent,
	}
	if client.doer == nil {
		client.doer = http.DefaultClient
	}
	if client.logger == nil {
		client.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return client
}

// request describes one call to the mint
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

func (c *HTTPClient) GetMintKeys(ctx context.Context, mintURL string) (nut01.Keys, error) {
	req := request{op: "get keys", method: http.MethodGet, path: "keys"}
	keys, err := call[nut01.Keys](ctx, c, mintURL, req, nil)
	if err != nil {
		return nil, err
	}
	return *keys, nil
}

func (c *HTTPClient) GetMintKeysets(ctx context.Context, mintURL string) (*nut02.GetKeysetsResponse, error) {
	req := request{op: "get keysets", method: http.MethodGet, path: "keysets"}
	return call[nut02.GetKeysetsResponse](ctx, c, mintURL, req, nil)
}

func (c *HTTPClient) RequestMint(ctx context.Context, mintURL string, amount uint64) (*nut03.RequestMintResponse, error) {
	req := request{
		op:     "request mint",
		method: http.MethodGet,
		path:   "mint",
		query:  url.Values{"amount": []string{strconv.FormatUint(amount, 10)}},
	}
	return call[nut03.RequestMintResponse](ctx, c, mintURL, req, nil)
}

func (c *HTTPClient) PostMint(ctx context.Context, mintURL string, hash string,
	outputs cashu.BlindedMessages) (*nut04.PostMintResponse, error) {

	req := request{
		op:     "post mint",
		method: http.MethodPost,
		path:   "mint",
		query:  url.Values{"hash": []string{hash}},
		body:   nut04.PostMintRequest{Outputs: outputs},
	}
	return call(ctx, c, mintURL, req, func(res *nut04.PostMintResponse) error {
		return matchOutputs(res.Promises, outputs)
	})
}

func (c *HTTPClient) CheckFees(ctx context.Context, mintURL string,
	invoice cashu.Bolt11Invoice) (*nut05.CheckFeesResponse, error) {

	req := request{
		op:     "check fees",
		method: http.MethodPost,
		path:   "checkfees",
		body:   nut05.CheckFeesRequest{PaymentRequest: invoice},
	}
	return call[nut05.CheckFeesResponse](ctx, c, mintURL, req, nil)
}

func (c *HTTPClient) PostMelt(ctx context.Context, mintURL string, proofs cashu.Proofs,
	invoice cashu.Bolt11Invoice, outputs cashu.BlindedMessages) (*nut05.PostMeltResponse, error) {

	req := request{
		op:     "post melt",
		method: http.MethodPost,
		path:   "melt",
		body: nut05.PostMeltRequest{
			Proofs:         proofs,
			PaymentRequest: invoice,
			Outputs:        outputs,
		},
	}
	return call(ctx, c, mintURL, req, func(res *nut05.PostMeltResponse) error {
		if len(res.Change) > len(outputs) {
			return fmt.Errorf("mint returned %v change signatures for %v outputs",
				len(res.Change), len(outputs))
		}
		return nil
	})
}

func (c *HTTPClient) PostSplit(ctx context.Context, mintURL string,
	splitRequest nut06.PostSplitRequest) (*nut06.PostSplitResponse, error) {

	req := request{op: "post split", method: http.MethodPost, path: "split", body: splitRequest}
	return call(ctx, c, mintURL, req, func(res *nut06.PostSplitResponse) error {
		return matchOutputs(res.Signatures(), splitRequest.Outputs)
	})
}

// matchOutputs checks that there is one signature per blinded
// message and that they are in the same order.
func matchOutputs(signatures cashu.BlindedSignatures, outputs cashu.BlindedMessages) error {
	if len(signatures) != len(outputs) {
		return fmt.Errorf("mint returned %v signatures for %v outputs", len(signatures), len(outputs))
	}
	for i := range signatures {
		if signatures[i].Amount != outputs[i].Amount {
			return fmt.Errorf("signature %v has amount %v but output has amount %v",
				i, signatures[i].Amount, outputs[i].Amount)
		}
	}
	return nil
}

// call sends the request and decodes the response. It is the
// only path from a request to a result for every operation.
func call[T any](ctx context.Context, c *HTTPClient, mintURL string,
	req request, check func(*T) error) (*T, error) {

	start := time.Now()
	logger := c.logger.With(slog.String("op", req.op), slog.String("request_id", uuid.NewString()))

	resp, err := c.send(ctx, mintURL, req, logger)
	var result *T
	if err == nil {
		result, err = decodeResponse(req.op, resp, check)
	}
	c.metrics.observe(req.op, err, time.Since(start))

	if err != nil {
		logger.Warn("mint request failed", slog.String("kind", KindOf(err).String()), slog.String("error", err.Error()))
		return nil, err
	}
	logger.Debug("mint request succeeded", slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// send executes the request. Every error it returns is a transport error.
func (c *HTTPClient) send(ctx context.Context, mintURL string, req request, logger *slog.Logger) (*response, error) {
	u, err := JoinURL(mintURL, req.path)
	if err != nil {
		return nil, transportError(req.op, err)
	}
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		jsonBody, err := json.Marshal(req.body)
		if err != nil {
			return nil, transportError(req.op, fmt.Errorf("json.Marshal: %v", err))
		}
		body = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, transportError(req.op, fmt.Errorf("http.NewRequest: %v", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if len(c.userAgent) > 0 {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	logger.Debug("sending mint request", slog.String("method", req.method), slog.String("url", u.String()))
	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, transportError(req.op, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize+1))
	if err != nil {
		return nil, transportError(req.op, fmt.Errorf("error reading response from mint: %v", err))
	}
	if len(respBody) > maxResponseSize {
		return nil, transportError(req.op, errors.New("response from mint is too large"))
	}

	logger.Debug("received mint response", slog.Int("status", httpResp.StatusCode), slog.Int("size", len(respBody)))
	return &response{statusCode: httpResp.StatusCode, body: respBody}, nil
}
