package testutils

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut02"
	"github.com/gonuts/mintclient/cashu/nuts/nut03"
	"github.com/gonuts/mintclient/cashu/nuts/nut04"
	"github.com/gonuts/mintclient/cashu/nuts/nut05"
	"github.com/gonuts/mintclient/cashu/nuts/nut06"
	"github.com/gonuts/mintclient/cashu/nuts/nut07"
	"github.com/gonuts/mintclient/cashu/nuts/nut09"
	"github.com/gonuts/mintclient/crypto"
	"github.com/gorilla/mux"
)

const FakePreimage = "0000000000000000000000000000000000000000000000000000000000000000"

var (
	InvoiceNotPaidErr  = cashu.Error{Detail: "Lightning invoice not paid yet.", Code: cashu.InvoiceNotPaidErrCode}
	TokenAlreadySpent  = cashu.Error{Detail: "Token already spent.", Code: cashu.TokenAlreadySpentErrCode}
	InvalidProofErr    = cashu.Error{Detail: "could not verify proofs.", Code: cashu.TransactionErrCode}
	InvalidAmountErr   = cashu.Error{Detail: "invalid amount", Code: cashu.StandardErrCode}
	InvalidRequestErr  = cashu.Error{Detail: "invalid request", Code: cashu.StandardErrCode}
	InsufficientFunds  = cashu.Error{Detail: "provided proofs not enough for Lightning payment.", Code: cashu.TransactionErrCode}
	OutputsMismatchErr = cashu.Error{Detail: "split of promises is not as expected.", Code: cashu.TransactionErrCode}
)

// CannedResponse is returned as is instead of the regular handler.
type CannedResponse struct {
	StatusCode int
	Body       string
}

// RecordedRequest is a request received by the fake mint.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

type mintQuote struct {
	amount uint64
	paid   bool
	issued bool
}

// FakeMint is a legacy mint served over httptest. It signs with a real
// keyset so that signatures can be unblinded and verified by tests.
type FakeMint struct {
	Server     *httptest.Server
	Keyset     *crypto.Keyset
	Info       nut09.MintInfo
	FeeReserve uint64

	mu       sync.Mutex
	quotes   map[string]*mintQuote
	spent    map[string]bool
	canned   map[string]CannedResponse
	requests []RecordedRequest
}

func NewFakeMint() *FakeMint {
	fm := &FakeMint{
		Keyset:     crypto.GenerateKeyset("fakemint", "0/0/0"),
		FeeReserve: 2,
		Info: nut09.MintInfo{
			Name:        "fake mint",
			Version:     "Nutshell/0.11.0",
			Description: "mint for tests",
			Contact:     []nut09.ContactInfo{{Method: "email", Info: "fake@mint.test"}},
			Nuts:        []string{"NUT-07", "NUT-08", "NUT-09"},
		},
		quotes: make(map[string]*mintQuote),
		spent:  make(map[string]bool),
		canned: make(map[string]CannedResponse),
	}

	r := mux.NewRouter()
	r.HandleFunc("/keys", fm.handleKeys).Methods(http.MethodGet)
	r.HandleFunc("/keysets", fm.handleKeysets).Methods(http.MethodGet)
	r.HandleFunc("/mint", fm.handleRequestMint).Methods(http.MethodGet)
	r.HandleFunc("/mint", fm.handlePostMint).Methods(http.MethodPost)
	r.HandleFunc("/checkfees", fm.handleCheckFees).Methods(http.MethodPost)
	r.HandleFunc("/melt", fm.handleMelt).Methods(http.MethodPost)
	r.HandleFunc("/split", fm.handleSplit).Methods(http.MethodPost)
	r.HandleFunc("/check", fm.handleCheck).Methods(http.MethodPost)
	r.HandleFunc("/info", fm.handleInfo).Methods(http.MethodGet)

	fm.Server = httptest.NewServer(fm.recordAndIntercept(r))
	return fm
}

func (fm *FakeMint) URL() string {
	return fm.Server.URL
}

func (fm *FakeMint) Close() {
	fm.Server.Close()
}

// SetResponse makes the mint answer method and path with the
// given status and body until ClearResponses is called.
func (fm *FakeMint) SetResponse(method, path string, statusCode int, body string) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.canned[method+" "+path] = CannedResponse{StatusCode: statusCode, Body: body}
}

func (fm *FakeMint) ClearResponses() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.canned = make(map[string]CannedResponse)
}

// SetQuotePaid marks the invoice for the quote as paid or unpaid.
func (fm *FakeMint) SetQuotePaid(hash string, paid bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if quote, ok := fm.quotes[hash]; ok {
		quote.paid = paid
	}
}

// LastRequest returns the most recent request the mint received.
func (fm *FakeMint) LastRequest() (RecordedRequest, bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if len(fm.requests) == 0 {
		return RecordedRequest{}, false
	}
	return fm.requests[len(fm.requests)-1], true
}

func (fm *FakeMint) RequestCount() int {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return len(fm.requests)
}

func (fm *FakeMint) recordAndIntercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			writeErr(rw, InvalidRequestErr)
			return
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		fm.mu.Lock()
		fm.requests = append(fm.requests, RecordedRequest{
			Method:   req.Method,
			Path:     req.URL.Path,
			RawQuery: req.URL.RawQuery,
			Body:     body,
		})
		canned, ok := fm.canned[req.Method+" "+req.URL.Path]
		fm.mu.Unlock()

		if ok {
			rw.Header().Set("Content-Type", "application/json")
			rw.WriteHeader(canned.StatusCode)
			rw.Write([]byte(canned.Body))
			return
		}
		next.ServeHTTP(rw, req)
	})
}

func (fm *FakeMint) handleKeys(rw http.ResponseWriter, req *http.Request) {
	jsonKeys, err := json.Marshal(fm.Keyset.PublicKeys())
	if err != nil {
		writeErr(rw, cashu.Error{Detail: "unable to serve keys", Code: cashu.StandardErrCode})
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.Write(jsonKeys)
}

func (fm *FakeMint) handleKeysets(rw http.ResponseWriter, req *http.Request) {
	writeJSON(rw, nut02.GetKeysetsResponse{Keysets: []string{fm.Keyset.Id}})
}

func (fm *FakeMint) handleRequestMint(rw http.ResponseWriter, req *http.Request) {
	amount, err := strconv.ParseUint(req.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount == 0 {
		writeErr(rw, InvalidAmountErr)
		return
	}

	invoice, err := CreateInvoice(amount)
	if err != nil {
		writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.LightningErrCode})
		return
	}

	fm.mu.Lock()
	fm.quotes[invoice.PaymentHash] = &mintQuote{amount: amount, paid: true}
	fm.mu.Unlock()

	writeJSON(rw, nut03.RequestMintResponse{PaymentRequest: invoice.PaymentRequest, Hash: invoice.PaymentHash})
}

func (fm *FakeMint) handlePostMint(rw http.ResponseWriter, req *http.Request) {
	var mintReq nut04.PostMintRequest
	if err := json.NewDecoder(req.Body).Decode(&mintReq); err != nil {
		writeErr(rw, InvalidRequestErr)
		return
	}

	hash := req.URL.Query().Get("hash")
	fm.mu.Lock()
	defer fm.mu.Unlock()

	quote, ok := fm.quotes[hash]
	if !ok || !quote.paid {
		writeErr(rw, InvoiceNotPaidErr)
		return
	}
	if quote.issued {
		writeErr(rw, cashu.Error{Detail: "tokens already issued for this invoice.", Code: cashu.LightningErrCode})
		return
	}
	if mintReq.Outputs.Amount() != quote.amount {
		writeErr(rw, InvalidAmountErr)
		return
	}

	promises, err := fm.sign(mintReq.Outputs)
	if err != nil {
		writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode})
		return
	}
	quote.issued = true

	writeJSON(rw, nut04.PostMintResponse{Promises: promises})
}

func (fm *FakeMint) handleCheckFees(rw http.ResponseWriter, req *http.Request) {
	var feesReq nut05.CheckFeesRequest
	if err := json.NewDecoder(req.Body).Decode(&feesReq); err != nil {
		writeErr(rw, InvalidRequestErr)
		return
	}
	writeJSON(rw, nut05.CheckFeesResponse{Fee: fm.FeeReserve})
}

func (fm *FakeMint) handleMelt(rw http.ResponseWriter, req *http.Request) {
	var meltReq nut05.PostMeltRequest
	if err := json.NewDecoder(req.Body).Decode(&meltReq); err != nil {
		writeErr(rw, InvalidRequestErr)
		return
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if cashuErr := fm.verifyProofs(meltReq.Proofs); cashuErr != nil {
		writeErr(rw, *cashuErr)
		return
	}

	needed := meltReq.PaymentRequest.Amount() + fm.FeeReserve
	total := meltReq.Proofs.Amount()
	if total < needed {
		writeErr(rw, InsufficientFunds)
		return
	}

	// the fake payment costs no fee so the whole reserve is returned
	var change cashu.BlindedSignatures
	overpaid := total - meltReq.PaymentRequest.Amount()
	if len(meltReq.Outputs) > 0 && overpaid > 0 {
		amounts := cashu.AmountSplit(overpaid)
		if len(amounts) > len(meltReq.Outputs) {
			amounts = amounts[:len(meltReq.Outputs)]
		}
		outputs := make(cashu.BlindedMessages, len(amounts))
		for i, amount := range amounts {
			outputs[i] = cashu.BlindedMessage{Amount: amount, B_: meltReq.Outputs[i].B_}
		}
		var err error
		change, err = fm.sign(outputs)
		if err != nil {
			writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode})
			return
		}
	}

	fm.markSpent(meltReq.Proofs)
	writeJSON(rw, nut05.PostMeltResponse{Paid: true, Preimage: FakePreimage, Change: change})
}

func (fm *FakeMint) handleSplit(rw http.ResponseWriter, req *http.Request) {
	var splitReq nut06.PostSplitRequest
	if err := json.NewDecoder(req.Body).Decode(&splitReq); err != nil {
		writeErr(rw, InvalidRequestErr)
		return
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if cashuErr := fm.verifyProofs(splitReq.Proofs); cashuErr != nil {
		writeErr(rw, *cashuErr)
		return
	}

	total := splitReq.Proofs.Amount()
	if splitReq.Amount > total || splitReq.Outputs.Amount() != total {
		writeErr(rw, OutputsMismatchErr)
		return
	}

	// outputs for the kept amount come first
	keep := total - splitReq.Amount
	var sum uint64
	idx := 0
	for idx < len(splitReq.Outputs) && sum < keep {
		sum += splitReq.Outputs[idx].Amount
		idx++
	}
	if sum != keep {
		writeErr(rw, OutputsMismatchErr)
		return
	}

	fst, err := fm.sign(splitReq.Outputs[:idx])
	if err != nil {
		writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode})
		return
	}
	snd, err := fm.sign(splitReq.Outputs[idx:])
	if err != nil {
		writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode})
		return
	}

	fm.markSpent(splitReq.Proofs)
	writeJSON(rw, nut06.PostSplitResponse{Fst: fst, Snd: snd})
}

func (fm *FakeMint) handleCheck(rw http.ResponseWriter, req *http.Request) {
	var checkReq nut07.CheckSpendableRequest
	if err := json.NewDecoder(req.Body).Decode(&checkReq); err != nil {
		writeErr(rw, InvalidRequestErr)
		return
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	spendable := make([]bool, len(checkReq.Proofs))
	pending := make([]bool, len(checkReq.Proofs))
	for i, proof := range checkReq.Proofs {
		spendable[i] = !fm.spent[proof.Secret]
	}

	writeJSON(rw, nut07.CheckSpendableResponse{Spendable: spendable, Pending: pending})
}

func (fm *FakeMint) handleInfo(rw http.ResponseWriter, req *http.Request) {
	writeJSON(rw, fm.Info)
}

// sign returns C_ = kB_ for each output using the key for its amount.
func (fm *FakeMint) sign(outputs cashu.BlindedMessages) (cashu.BlindedSignatures, error) {
	signatures := make(cashu.BlindedSignatures, len(outputs))
	for i, output := range outputs {
		k, ok := fm.Keyset.PrivateKey(output.Amount)
		if !ok {
			return nil, fmt.Errorf("invalid amount in blinded message: %v", output.Amount)
		}

		B_bytes, err := hex.DecodeString(output.B_)
		if err != nil {
			return nil, err
		}
		B_, err := secp256k1.ParsePubKey(B_bytes)
		if err != nil {
			return nil, err
		}

		C_ := crypto.SignBlindedMessage(B_, k)
		signatures[i] = cashu.BlindedSignature{
			Id:     fm.Keyset.Id,
			Amount: output.Amount,
			C_:     hex.EncodeToString(C_.SerializeCompressed()),
		}
	}
	return signatures, nil
}

// verifyProofs must be called with fm.mu held.
func (fm *FakeMint) verifyProofs(proofs cashu.Proofs) *cashu.Error {
	if len(proofs) == 0 {
		return &InvalidProofErr
	}
	for _, proof := range proofs {
		if fm.spent[proof.Secret] {
			return &TokenAlreadySpent
		}
		if err := fm.verifyProof(proof); err != nil {
			return &InvalidProofErr
		}
	}
	return nil
}

func (fm *FakeMint) verifyProof(proof cashu.Proof) error {
	k, ok := fm.Keyset.PrivateKey(proof.Amount)
	if !ok {
		return errors.New("invalid amount")
	}
	Cbytes, err := hex.DecodeString(proof.C)
	if err != nil {
		return err
	}
	C, err := secp256k1.ParsePubKey(Cbytes)
	if err != nil {
		return err
	}
	if !crypto.Verify([]byte(proof.Secret), k, C) {
		return errors.New("invalid proof")
	}
	return nil
}

func (fm *FakeMint) markSpent(proofs cashu.Proofs) {
	for _, proof := range proofs {
		fm.spent[proof.Secret] = true
	}
}

func writeJSON(rw http.ResponseWriter, v any) {
	jsonRes, err := json.Marshal(v)
	if err != nil {
		writeErr(rw, cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode})
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.Write(jsonRes)
}

func writeErr(rw http.ResponseWriter, cashuErr cashu.Error) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusBadRequest)
	errRes, _ := json.Marshal(cashuErr)
	rw.Write(errRes)
}
