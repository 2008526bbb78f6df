package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/account"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/ledger"
)

// fakeStore backs the handlers with an in-memory implementation of the
// repository and unit-of-work interfaces.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	entries  []domain.LedgerEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (f *fakeStore) Create(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(id)
}

func (f *fakeStore) lookup(id uuid.UUID) (*domain.Account, error) {
	acc, ok := f.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

func (f *fakeStore) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sum(accountID), nil
}

func (f *fakeStore) sum(accountID uuid.UUID) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range f.entries {
		if entry.AccountID == accountID {
			balance = balance.Add(entry.Amount)
		}
	}
	return balance
}

func (f *fakeStore) EntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]domain.LedgerEntry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].AccountID == accountID {
			entries = append(entries, f.entries[i])
		}
	}
	return entries, nil
}

func (f *fakeStore) Execute(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := len(f.entries)
	if err := fn((*fakeTx)(f)); err != nil {
		f.entries = f.entries[:snapshot]
		return err
	}
	return nil
}

type fakeTx fakeStore

func (f *fakeTx) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return (*fakeStore)(f).lookup(id)
}

func (f *fakeTx) LockAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return (*fakeStore)(f).lookup(id)
}

func (f *fakeTx) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return (*fakeStore)(f).sum(accountID), nil
}

func (f *fakeTx) WriteTransaction(ctx context.Context, tx *domain.Transaction) error {
	f.entries = append(f.entries, tx.Entries...)
	return nil
}

func newTestApp() *fiber.App {
	store := newFakeStore()
	accountService := account.NewAccountService(store, store)
	ledgerService := ledger.NewLedgerService(store, store, nil)

	app := fiber.New()
	NewServer(accountService, ledgerService).RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func createAccount(t *testing.T, app *fiber.App, name string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/accounts", fiber.Map{
		"name": name,
		"type": "asset",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func TestCreateAccount_Endpoint(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, http.MethodPost, "/accounts", fiber.Map{
		"name": "Alice",
		"type": "asset",
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "0", body["balance"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateAccount_EmptyName(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, http.MethodPost, "/accounts", fiber.Map{
		"name": "",
		"type": "asset",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "cannot be empty")
}

func TestGetAccount_NotFound(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, http.MethodGet, "/accounts/"+uuid.New().String(), nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "not found")
}

func TestGetAccount_InvalidID(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, http.MethodGet, "/accounts/not-a-uuid", nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeposit_Endpoint(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Alice")

	resp, body := doJSON(t, app, http.MethodPost, "/deposits", fiber.Map{
		"accountId": accountID,
		"amount":    100,
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "100", body["newBalance"])
	assert.NotEmpty(t, body["transactionId"])

	resp, body = doJSON(t, app, http.MethodGet, "/accounts/"+accountID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", body["balance"])
}

func TestDeposit_InvalidAmount(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Alice")

	resp, body := doJSON(t, app, http.MethodPost, "/deposits", fiber.Map{
		"accountId": accountID,
		"amount":    -5,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "must be positive")
}

func TestDeposit_UnknownAccount(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, http.MethodPost, "/deposits", fiber.Map{
		"accountId": uuid.New().String(),
		"amount":    100,
	})

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Bob")

	resp, body := doJSON(t, app, http.MethodPost, "/withdrawals", fiber.Map{
		"accountId": accountID,
		"amount":    40,
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["error"], "insufficient funds")

	// Failed withdrawal leaves no trace in the ledger
	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID+"/ledger", nil)
	ledgerResp, err := app.Test(req, -1)
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(ledgerResp.Body).Decode(&entries))
	assert.Empty(t, entries)
}

func TestTransfer_SameAccount(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Alice")

	resp, body := doJSON(t, app, http.MethodPost, "/transfers", fiber.Map{
		"sourceAccountId": accountID,
		"destAccountId":   accountID,
		"amount":          10,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "same account")
}

func TestTransfer_Scenario(t *testing.T) {
	app := newTestApp()
	aliceID := createAccount(t, app, "Alice")
	bobID := createAccount(t, app, "Bob")

	resp, _ := doJSON(t, app, http.MethodPost, "/deposits", fiber.Map{
		"accountId": aliceID,
		"amount":    100,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/transfers", fiber.Map{
		"sourceAccountId": aliceID,
		"destAccountId":   bobID,
		"amount":          40,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	_, body := doJSON(t, app, http.MethodGet, "/accounts/"+aliceID, nil)
	assert.Equal(t, "60", body["balance"])
	_, body = doJSON(t, app, http.MethodGet, "/accounts/"+bobID, nil)
	assert.Equal(t, "40", body["balance"])

	// Withdrawing more than Bob holds fails and his balance is unchanged
	resp, _ = doJSON(t, app, http.MethodPost, "/withdrawals", fiber.Map{
		"accountId": bobID,
		"amount":    100,
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	_, body = doJSON(t, app, http.MethodGet, "/accounts/"+bobID, nil)
	assert.Equal(t, "40", body["balance"])
}

func TestGetLedgerHistory_Endpoint(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Alice")

	for _, amount := range []int{100, 50} {
		resp, _ := doJSON(t, app, http.MethodPost, "/deposits", fiber.Map{
			"accountId": accountID,
			"amount":    amount,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID+"/ledger", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "50", entries[0]["amount"])
	assert.Equal(t, "100", entries[1]["amount"])
	for _, entry := range entries {
		assert.Equal(t, "credit", entry["type"])
		assert.Equal(t, accountID, entry["account_id"])
	}
}

func TestDeposit_AmountAsString(t *testing.T) {
	app := newTestApp()
	accountID := createAccount(t, app, "Alice")

	payload := fmt.Sprintf(`{"accountId": %q, "amount": "25.50"}`, accountID)
	req := httptest.NewRequest(http.MethodPost, "/deposits", bytes.NewReader([]byte(payload)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "25.5", body["newBalance"])
}
