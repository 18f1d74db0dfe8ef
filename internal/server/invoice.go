package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		invoicedomain.ListFilter
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, err := s.invoiceSvc.List(c.Request.Context(), query.ListFilter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pageInfo := pagination.BuildCursorPageInfo(items, query.PageSize, func(inv *invoicedomain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})
	if pageInfo != nil && len(items) > query.PageSize {
		items = items[:query.PageSize]
	}
	respondList(c, items, pageInfo)
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, inv)
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, inv)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, inv)
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SendInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	// Admin-triggered sends are manual: they go out even if the invoice was
	// already delivered once.
	accepted, err := s.invoiceSvc.SendInvoice(c.Request.Context(), id, true)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"accepted": accepted})
}

// BulkSendInvoices dispatches a batch of manual sends. Individual failures
// are counted rather than aborting the batch.
func (s *Server) BulkSendInvoices(c *gin.Context) {
	var req struct {
		InvoiceIDs []snowflake.ID `json:"invoice_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	accepted, failed := 0, 0
	for _, id := range req.InvoiceIDs {
		ok, err := s.invoiceSvc.SendInvoice(c.Request.Context(), id, true)
		if err != nil {
			failed++
			s.log.Warn("bulk send item failed", zap.String("invoice_id", id.String()), zap.Error(err))
			continue
		}
		if ok {
			accepted++
		}
	}
	respondData(c, gin.H{"accepted": accepted, "failed": failed})
}

func (s *Server) ActivateInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.invoiceSvc.Activate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.invoiceSvc.MarkPaid(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) CancelInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.invoiceSvc.Cancel(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) InvoiceEmailLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	logs, err := s.invoiceSvc.EmailLogs(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, logs)
}

func (s *Server) InvoiceStats(c *gin.Context) {
	stats, err := s.invoiceSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, stats)
}

func (s *Server) GenerateRecurring(c *gin.Context) {
	generated, err := s.invoiceSvc.GenerateRecurringInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"generated": generated})
}

func (s *Server) SendAutomatic(c *gin.Context) {
	dispatched, err := s.invoiceSvc.SendAutomaticInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"dispatched": dispatched})
}

func (s *Server) MarkOverdue(c *gin.Context) {
	marked, err := s.invoiceSvc.MarkOverdueInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"marked": marked})
}

func (s *Server) RetryFailed(c *gin.Context) {
	dispatched, err := s.invoiceSvc.RetryFailedInvoices(c.Request.Context(), s.cfg.Scheduler.RetryLookback)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"dispatched": dispatched})
}

func (s *Server) InvoiceHTML(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	html, err := s.renderer.HTML(c.Request.Context(), inv)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) InvoicePDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	pdf, err := s.renderer.PDF(c.Request.Context(), inv)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+inv.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
