package rest

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/account"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/ledger"
)

// Server binds the usecase services to the HTTP API
type Server struct {
	AccountService *account.AccountService
	LedgerService  *ledger.LedgerService
}

// NewServer creates a new HTTP server instance
func NewServer(accountService *account.AccountService, ledgerService *ledger.LedgerService) *Server {
	return &Server{
		AccountService: accountService,
		LedgerService:  ledgerService,
	}
}

// RegisterRoutes registers all API routes on the app
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/", s.handleRoot)
	app.Post("/accounts", s.handleCreateAccount)
	app.Get("/accounts/:id", s.handleGetAccount)
	app.Get("/accounts/:id/ledger", s.handleGetLedgerHistory)
	app.Post("/deposits", s.handleDeposit)
	app.Post("/withdrawals", s.handleWithdraw)
	app.Post("/transfers", s.handleTransfer)
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<h1>Financial Ledger API is running!</h1>")
}

type createAccountRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type accountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

func (s *Server) handleCreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	acc, err := s.AccountService.CreateAccount(c.Context(), req.Name, domain.AccountType(req.Type))
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(accountResponse{
		ID:      acc.ID.String(),
		Name:    acc.Name,
		Type:    string(acc.Type),
		Balance: decimal.Zero.String(),
	})
}

func (s *Server) handleGetAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	acc, balance, err := s.AccountService.GetAccount(c.Context(), id)
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	return c.JSON(accountResponse{
		ID:      acc.ID.String(),
		Name:    acc.Name,
		Type:    string(acc.Type),
		Balance: balance.String(),
	})
}

type ledgerEntryResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	CreatedAt     string `json:"created_at"`
}

func (s *Server) handleGetLedgerHistory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	entries, err := s.AccountService.GetLedgerHistory(c.Context(), id)
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	response := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, ledgerEntryResponse{
			ID:            entry.ID.String(),
			AccountID:     entry.AccountID.String(),
			TransactionID: entry.TransactionID.String(),
			Amount:        entry.Amount.String(),
			Type:          string(entry.Kind),
			CreatedAt:     entry.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}

	return c.JSON(response)
}

type depositRequest struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) handleDeposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	result, err := s.LedgerService.Deposit(c.Context(), accountID, req.Amount)
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":        "success",
		"transactionId": result.Transaction.ID.String(),
		"newBalance":    result.NewBalance.String(),
	})
}

type withdrawRequest struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) handleWithdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	tx, err := s.LedgerService.Withdraw(c.Context(), accountID, req.Amount)
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":        "success",
		"transactionId": tx.ID.String(),
	})
}

type transferRequest struct {
	SourceAccountID string          `json:"sourceAccountId"`
	DestAccountID   string          `json:"destAccountId"`
	Amount          decimal.Decimal `json:"amount"`
}

func (s *Server) handleTransfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	sourceID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	destID, err := uuid.Parse(req.DestAccountID)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	tx, err := s.LedgerService.Transfer(c.Context(), sourceID, destID, req.Amount)
	if err != nil {
		return errorResponse(c, statusCode(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":        "success",
		"transactionId": tx.ID.String(),
	})
}

func errorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// statusCode maps domain errors to HTTP status codes: validation
// failures are client errors, insufficient funds is a business conflict
// distinguished from generic server errors, everything else is a server
// side failure.
func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	}

	// Domain validation messages are client errors as well
	if strings.Contains(err.Error(), "cannot be empty") ||
		strings.Contains(err.Error(), "must be positive") {
		return fiber.StatusBadRequest
	}

	return fiber.StatusInternalServerError
}
