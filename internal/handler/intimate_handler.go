package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// IntimateRequestResponse is one entry of the pending or rejected lists.
// User is the other side of the request.
type IntimateRequestResponse struct {
	User      AuthorResponse `json:"user"`
	Rejected  bool           `json:"rejected"`
	CreatedAt time.Time      `json:"created_at"`
}

// IntimatesOverviewResponse is everything the profile page shows about
// intimate requests.
type IntimatesOverviewResponse struct {
	PendingForMe  []IntimateRequestResponse `json:"pending_for_me"`
	PendingFromMe []IntimateRequestResponse `json:"pending_from_me"`
	Intimates     []intimate.Partner        `json:"intimates"`
	RejectedByMe  []IntimateRequestResponse `json:"rejected_by_me"`
}

// IntimateHandler serves the intimate request endpoints.
type IntimateHandler struct {
	Manager *intimate.Manager
}

// SendRequest godoc
// @Summary      Send an intimate request
// @Description  Asks the target user to become intimate friends. Sending again, or to a user who already asked you, is a no-op.
// @Tags         intimates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent"}"
// @Success      200  {object}  map[string]string "{"message": "Request already exists"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      429  {object}  ErrorResponse
// @Router       /intimates/{id}/request [post]
func (h *IntimateHandler) SendRequest(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.Manager.SendRequest(c.Request.Context(), viewerID, targetUserID)
	if errors.Is(err, intimate.ErrAlreadyRequested) {
		c.JSON(http.StatusOK, gin.H{"message": "Request already exists"})
		return
	}
	if err != nil {
		respondIntimateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Request sent"})
}

// ApproveRequest godoc
// @Summary      Approve an intimate request
// @Description  Approves the request the user {id} sent to the authenticated user.
// @Tags         intimates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request approved"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      409  {object}  ErrorResponse "Inconsistent request state"
// @Router       /intimates/{id}/approve [post]
func (h *IntimateHandler) ApproveRequest(c *gin.Context) {
	h.receiverTransition(c, h.Manager.Approve, "Request approved")
}

// RejectRequest godoc
// @Summary      Reject an intimate request
// @Description  Declines the request the user {id} sent to the authenticated user.
// @Tags         intimates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request rejected"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      409  {object}  ErrorResponse "Inconsistent request state"
// @Router       /intimates/{id}/reject [post]
func (h *IntimateHandler) RejectRequest(c *gin.Context) {
	h.receiverTransition(c, h.Manager.Reject, "Request rejected")
}

// CancelRequest godoc
// @Summary      Cancel an intimate request
// @Description  Withdraws the request the authenticated user sent to user {id}.
// @Tags         intimates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Request cancelled"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      409  {object}  ErrorResponse "Inconsistent request state"
// @Router       /intimates/{id}/cancel [post]
func (h *IntimateHandler) CancelRequest(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Manager.Cancel(c.Request.Context(), viewerID, targetUserID); err != nil {
		respondIntimateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

// receiverTransition runs op with the path user as sender and the viewer as
// receiver.
func (h *IntimateHandler) receiverTransition(c *gin.Context, op func(ctx context.Context, sender, receiver uint) error, message string) {
	viewerID := c.MustGet("userID").(uint)
	senderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := op(c.Request.Context(), senderID, viewerID); err != nil {
		respondIntimateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// GetMyIntimates godoc
// @Summary      Intimate overview
// @Description  Pending requests in both directions, intimate friends and rejected requests of the authenticated user.
// @Tags         intimates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  IntimatesOverviewResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /intimates/me [get]
func (h *IntimateHandler) GetMyIntimates(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	ctx := c.Request.Context()

	forMe, err := h.Manager.ListPendingForMe(ctx, viewerID)
	if err != nil {
		respondIntimateError(c, err)
		return
	}
	fromMe, err := h.Manager.ListPendingFromMe(ctx, viewerID)
	if err != nil {
		respondIntimateError(c, err)
		return
	}
	partners, err := h.Manager.ListIntimates(ctx, viewerID)
	if err != nil {
		respondIntimateError(c, err)
		return
	}
	rejected, err := h.Manager.ListRejectedByMe(ctx, viewerID)
	if err != nil {
		respondIntimateError(c, err)
		return
	}

	c.JSON(http.StatusOK, IntimatesOverviewResponse{
		PendingForMe:  buildIntimateRequests(forMe, func(r models.Intimate) models.User { return r.Sender }),
		PendingFromMe: buildIntimateRequests(fromMe, func(r models.Intimate) models.User { return r.Receiver }),
		Intimates:     partners,
		RejectedByMe:  buildIntimateRequests(rejected, func(r models.Intimate) models.User { return r.Sender }),
	})
}

func buildIntimateRequests(recs []models.Intimate, other func(models.Intimate) models.User) []IntimateRequestResponse {
	out := make([]IntimateRequestResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, IntimateRequestResponse{
			User:      buildAuthorResponse(other(r)),
			Rejected:  r.Reject,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

func respondIntimateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, intimate.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a request to yourself"})
	case errors.Is(err, intimate.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, intimate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
	case errors.Is(err, intimate.ErrAmbiguousState):
		c.JSON(http.StatusConflict, gin.H{"error": "Inconsistent request state"})
	default:
		log.Printf("intimate handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
