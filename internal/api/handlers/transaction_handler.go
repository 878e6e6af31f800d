package handlers

import (
	"context"
	"encoding/json"
	"time"

	"finease/internal/dto"
	"finease/internal/models"
	"finease/internal/service"
	"finease/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	txService *service.TransactionService
	opTimeout time.Duration
	logger    *zap.Logger
}

func NewTransactionHandler(txService *service.TransactionService, opTimeout time.Duration, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

// ListTransactions godoc
// @Summary List the caller's transactions
// @Description Returns every transaction owned by email, newest date first. email must be the caller's own.
// @Tags transactions
// @Produce json
// @Param email query string true "Owner email"
// @Security Bearer
// @Success 200 {array} object
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /my-transaction [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	transactions, err := h.txService.List(ctx, middleware.IdentityFrom(c), c.Query("email"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch transactions")
	}
	return c.JSON(transactions)
}

// GetTransaction godoc
// @Summary Get one transaction
// @Description Returns the transaction, or null when no transaction has the id.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID (24 hex characters)"
// @Security Bearer
// @Success 200 {object} object
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /my-transaction/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	tx, err := h.txService.Get(ctx, middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to fetch transaction")
	}
	if tx == nil {
		return c.JSON(nil)
	}
	return c.JSON(tx)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Stores an arbitrary JSON object. Its email is always set to the caller's.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body object true "Transaction"
// @Security Bearer
// @Success 200 {object} dto.InsertResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /my-transaction [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	payload, err := parseDocument(c.Body())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create transaction")
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	id, err := h.txService.Create(ctx, middleware.IdentityFrom(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create transaction")
	}

	return c.JSON(dto.InsertResponse{
		Acknowledged: true,
		InsertedID:   id.Hex(),
	})
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Merges the supplied fields into the transaction; other fields are left untouched.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (24 hex characters)"
// @Param request body object true "Fields to set"
// @Security Bearer
// @Success 200 {object} dto.UpdateResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /my-transaction/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := service.ValidateID(id); err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}
	patch, err := parseDocument(c.Body())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	result, err := h.txService.Update(ctx, middleware.IdentityFrom(c), id, patch)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}

	return c.JSON(dto.UpdateResponse{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	})
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Deleting a transaction that does not exist succeeds with deletedCount 0.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID (24 hex characters)"
// @Security Bearer
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /my-transaction/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	deleted, err := h.txService.Delete(ctx, middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to delete transaction")
	}

	return c.JSON(dto.DeleteResponse{
		Acknowledged: true,
		DeletedCount: deleted,
	})
}

func (h *TransactionHandler) opContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.opTimeout)
}

// parseDocument accepts a JSON object only.
func parseDocument(body []byte) (models.Transaction, error) {
	var doc models.Transaction
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		return nil, service.ErrInvalidBody
	}
	return doc, nil
}
