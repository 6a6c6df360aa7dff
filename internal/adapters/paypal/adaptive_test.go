package paypal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/adapters/memory"
	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/ledger"
)

type capturedRequest struct {
	path    string
	body    string
	headers http.Header
}

// stubProvider answers every request with the given status and body and
// remembers the last request.
func stubProvider(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		captured.path = r.URL.Path
		captured.body = string(raw)
		captured.headers = r.Header.Clone()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestGateway(baseURL string) (*AdaptiveGateway, *memory.TransactionRepository) {
	repo := memory.NewTransactionRepository()
	cfg := Config{
		Username:      "api-user",
		Password:      "api-pass",
		Signature:     "api-sig",
		ApplicationID: "APP-80W284485P519543T",
		Sandbox:       true,
		BaseURL:       baseURL,
	}
	gw := NewAdaptiveGateway(cfg, NewClient(5*time.Second), ledger.New(repo, zap.NewNop()), zap.NewNop())
	return gw, repo
}

func TestAdaptiveGateway_Pay(t *testing.T) {
	srv, captured := stubProvider(t, http.StatusOK,
		"responseEnvelope.ack=Success&responseEnvelope.correlationId=corr-1&payKey=AP-123&paymentExecStatus=CREATED")
	gw, repo := newTestGateway(srv.URL)

	rec, err := gw.Pay(context.Background(), domain.PayRequest{
		Receivers: []domain.Receiver{{Email: "platform@example.com", Amount: d("100")}},
		Currency:  "GBP",
		ReturnURL: "https://shop.example.com/return",
		CancelURL: "https://shop.example.com/cancel",
	})

	require.NoError(t, err)
	require.Equal(t, "AP-123", rec.PayKey)
	require.Equal(t, "corr-1", rec.CorrelationID)
	require.Equal(t, "https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_ap-payment&paykey=AP-123", rec.RedirectURL())

	require.Equal(t, "/AdaptivePayments/Pay", captured.path)
	require.Equal(t, "api-user", captured.headers.Get("X-PAYPAL-SECURITY-USERID"))
	require.Equal(t, "APP-80W284485P519543T", captured.headers.Get("X-PAYPAL-APPLICATION-ID"))
	require.Equal(t, "NV", captured.headers.Get("X-PAYPAL-REQUEST-DATA-FORMAT"))
	require.Equal(t, "NV", captured.headers.Get("X-PAYPAL-RESPONSE-DATA-FORMAT"))
	require.Equal(t, contentTypeNameValue, captured.headers.Get("Content-Type"))

	sent, err := url.ParseQuery(captured.body)
	require.NoError(t, err)
	require.Equal(t, "PAY", sent.Get("actionType"))
	require.Equal(t, "100.00", sent.Get("receiverList.receiver(0).amount"))
	require.Equal(t, "en_US", sent.Get("requestEnvelope.errorLanguage"))
	require.Equal(t, "ReturnAll", sent.Get("requestEnvelope.detailLevel"))

	// The stored amount matches what was sent, to the cent.
	saved := repo.All()
	require.Len(t, saved, 1)
	require.Equal(t, sent.Get("receiverList.receiver(0).amount"), saved[0].Amount.Decimal.StringFixed(2))
	require.Equal(t, "GBP", saved[0].Currency)
	require.Equal(t, captured.body, saved[0].RawRequest)
	require.True(t, saved[0].IsSandbox)
}

func TestAdaptiveGateway_PayRejected(t *testing.T) {
	srv, _ := stubProvider(t, http.StatusOK,
		"responseEnvelope.ack=Failure&responseEnvelope.correlationId=corr-2&error(0).errorId=580001&error(0).message=Invalid+request")
	gw, repo := newTestGateway(srv.URL)

	rec, err := gw.Pay(context.Background(), chainedRequest())

	require.Nil(t, rec)
	var rejected *domain.GatewayRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "580001", rejected.Code)
	require.Equal(t, "Invalid request", rejected.Message)

	saved := repo.All()
	require.Len(t, saved, 1)
	require.Equal(t, "Failure", saved[0].Ack)
	require.Equal(t, "corr-2", saved[0].CorrelationID)
}

func TestAdaptiveGateway_CommunicationError(t *testing.T) {
	srv, _ := stubProvider(t, http.StatusInternalServerError, "oops")
	gw, repo := newTestGateway(srv.URL)

	_, err := gw.Pay(context.Background(), chainedRequest())

	require.ErrorIs(t, err, domain.ErrCommunication)
	require.Empty(t, repo.All())
}

func TestAdaptiveGateway_UndecodableResponseIsRecorded(t *testing.T) {
	srv, _ := stubProvider(t, http.StatusOK,
		"responseEnvelope.ack=Failure&responseEnvelope.correlationId=corr-5&error(0).errorId=520002&error(0).message=Invalid+request:+100%")
	gw, repo := newTestGateway(srv.URL)

	rec, err := gw.ExecutePayment(context.Background(), "AP-1")

	require.Nil(t, rec)
	require.NotErrorIs(t, err, domain.ErrCommunication)
	var rejected *domain.GatewayRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "520002", rejected.Code)
	require.Equal(t, "Invalid request: 100%", rejected.Message)

	saved := repo.All()
	require.Len(t, saved, 1)
	require.Equal(t, "corr-5", saved[0].CorrelationID)
	require.Contains(t, saved[0].RawResponse, "100%")
}

func TestParseNameValue(t *testing.T) {
	pairs, err := parseNameValue("ack=Success&memo=a%3Bb;c&dup=first&dup=second&&bad%zz=x")

	require.Error(t, err)
	require.Equal(t, "Success", pairs["ack"])
	require.Equal(t, "a;b;c", pairs["memo"])
	require.Equal(t, "first", pairs["dup"])
	require.Equal(t, "x", pairs["bad%zz"])

	pairs, err = parseNameValue("ack=Success&payKey=AP-1")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
}

func TestAdaptiveGateway_UnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()
	gw, repo := newTestGateway(baseURL)

	_, err := gw.ExecutePayment(context.Background(), "AP-1")

	require.ErrorIs(t, err, domain.ErrCommunication)
	require.Empty(t, repo.All())
}

func TestAdaptiveGateway_InvalidReceiversSkipProvider(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	t.Cleanup(srv.Close)
	gw, repo := newTestGateway(srv.URL)

	_, err := gw.Pay(context.Background(), domain.PayRequest{Currency: "GBP"})

	require.ErrorIs(t, err, domain.ErrInvalidReceivers)
	require.Zero(t, calls)
	require.Empty(t, repo.All())
}

func TestAdaptiveGateway_PaymentDetails(t *testing.T) {
	srv, captured := stubProvider(t, http.StatusOK,
		"responseEnvelope.ack=Success&responseEnvelope.correlationId=corr-3&payKey=AP-1&status=COMPLETED&currencyCode=GBP&memo=100.00&senderEmail=buyer%40example.com")
	gw, repo := newTestGateway(srv.URL)

	details, err := gw.PaymentDetails(context.Background(), "AP-1")

	require.NoError(t, err)
	require.Equal(t, "/AdaptivePayments/PaymentDetails", captured.path)
	require.Equal(t, "100.00", details.Memo)
	require.Equal(t, "GBP", details.Currency)
	require.Equal(t, "buyer@example.com", details.SenderEmail)
	require.Equal(t, "COMPLETED", details.Status)
	require.Equal(t, "GBP", repo.All()[0].Currency)
}

func TestAdaptiveGateway_GetVerifiedStatus(t *testing.T) {
	t.Run("complete answer", func(t *testing.T) {
		srv, captured := stubProvider(t, http.StatusOK,
			"responseEnvelope.ack=Success&accountStatus=VERIFIED&userInfo.emailAddress=ann%40example.com&userInfo.name.firstName=Ann&userInfo.name.lastName=Smith")
		gw, _ := newTestGateway(srv.URL)

		status, err := gw.GetVerifiedStatus(context.Background(), "Ann", "Smith", "ann@example.com")

		require.NoError(t, err)
		require.True(t, status.IsVerified())
		require.Equal(t, "Smith", status.LastName)
		require.Equal(t, "/AdaptiveAccounts/GetVerifiedStatus", captured.path)

		sent, err := url.ParseQuery(captured.body)
		require.NoError(t, err)
		require.Equal(t, "NAME", sent.Get("matchCriteria"))
		require.Equal(t, "ann@example.com", sent.Get("accountIdentifier.emailAddress"))
	})

	t.Run("missing field", func(t *testing.T) {
		srv, _ := stubProvider(t, http.StatusOK,
			"responseEnvelope.ack=Success&accountStatus=VERIFIED&userInfo.emailAddress=ann%40example.com&userInfo.name.firstName=Ann")
		gw, _ := newTestGateway(srv.URL)

		_, err := gw.GetVerifiedStatus(context.Background(), "Ann", "Smith", "ann@example.com")

		require.ErrorIs(t, err, domain.ErrAccountIncomplete)
	})
}

func TestAdaptiveGateway_ExecuteAndRefund(t *testing.T) {
	srv, captured := stubProvider(t, http.StatusOK,
		"responseEnvelope.ack=Success&responseEnvelope.correlationId=corr-4&paymentExecStatus=COMPLETED")
	gw, repo := newTestGateway(srv.URL)

	rec, err := gw.ExecutePayment(context.Background(), "AP-1")
	require.NoError(t, err)
	require.Equal(t, "corr-4", rec.CorrelationID)
	require.Equal(t, "/AdaptivePayments/ExecutePayment", captured.path)

	rec, err = gw.Refund(context.Background(), "AP-1")
	require.NoError(t, err)
	require.Equal(t, domain.ActionRefund, rec.Action)
	require.Equal(t, "/AdaptivePayments/Refund", captured.path)

	require.Len(t, repo.All(), 2)
}

func TestAddressVerifier_VerifyAddress(t *testing.T) {
	srv, captured := stubProvider(t, http.StatusOK,
		"ACK=Success&CORRELATIONID=c-1&CONFIRMATIONCODE=Confirmed&STREETMATCH=Matched&ZIPMATCH=Matched&COUNTRYCODE=GB")
	repo := memory.NewTransactionRepository()
	cfg := Config{Username: "api-user", Password: "api-pass", Signature: "api-sig", NVPURL: srv.URL + "/nvp"}
	verifier := NewAddressVerifier(cfg, NewClient(time.Second), ledger.New(repo, zap.NewNop()), zap.NewNop())

	match, err := verifier.VerifyAddress(context.Background(), "ann@example.com", domain.Address{Line1: "1 High St", Postcode: "N1 1AA"})

	require.NoError(t, err)
	require.Equal(t, "Matched", match.StreetMatch)
	require.Equal(t, "Matched", match.ZipMatch)
	require.Equal(t, "GB", match.CountryCode)

	sent, err := url.ParseQuery(captured.body)
	require.NoError(t, err)
	require.Equal(t, "AddressVerify", sent.Get("METHOD"))
	require.Equal(t, "api-pass", sent.Get("PWD"))
	require.Equal(t, "N1 1AA", sent.Get("ZIP"))

	saved := repo.All()
	require.Len(t, saved, 1)
	require.Equal(t, "c-1", saved[0].CorrelationID)
	require.NotContains(t, saved[0].RawRequest, "api-pass")
	require.NotContains(t, saved[0].RawRequest, "api-sig")
}
