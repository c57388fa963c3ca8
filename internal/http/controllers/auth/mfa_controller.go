// Package auth contains controllers for authentication endpoints.
package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// MFAController handles POST /api/mfa/verify and /api/mfa/verify-backup-code.
type MFAController struct {
	service svc.MFAService
}

// NewMFAController creates the controller.
func NewMFAController(s svc.MFAService) *MFAController {
	return &MFAController{service: s}
}

// Verify redeems a challenge token with a TOTP code.
func (c *MFAController) Verify(w http.ResponseWriter, r *http.Request) {
	values, err := helpers.DecodeBody(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("request body could not be parsed"))
		return
	}
	req := dto.MFAVerifyRequest{
		ChallengeToken: strings.TrimSpace(values["challengeToken"]),
		Code:           strings.TrimSpace(values["code"]),
	}
	if req.ChallengeToken == "" || req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("challengeToken and code are required"))
		return
	}

	meta := common.RequestMeta{IP: helpers.ClientIP(r), UserAgent: r.UserAgent(), Host: r.Host}
	resp, err := c.service.VerifyTOTP(r.Context(), req.ChallengeToken, req.Code, meta)
	c.respond(w, r, resp, err)
}

// VerifyBackupCode redeems a challenge token with a backup code.
func (c *MFAController) VerifyBackupCode(w http.ResponseWriter, r *http.Request) {
	values, err := helpers.DecodeBody(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("request body could not be parsed"))
		return
	}
	req := dto.MFABackupRequest{
		ChallengeToken: strings.TrimSpace(values["challengeToken"]),
		BackupCode:     strings.TrimSpace(values["backupCode"]),
	}
	if req.ChallengeToken == "" || req.BackupCode == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("challengeToken and backupCode are required"))
		return
	}

	meta := common.RequestMeta{IP: helpers.ClientIP(r), UserAgent: r.UserAgent(), Host: r.Host}
	resp, err := c.service.VerifyBackupCode(r.Context(), req.ChallengeToken, req.BackupCode, meta)
	c.respond(w, r, resp, err)
}

func (c *MFAController) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		if errors.Is(err, svc.ErrChallengeInvalid) {
			httperrors.WriteError(w, httperrors.ErrInvalidGrant)
			return
		}
		logger.From(r.Context()).Error("mfa verification failed",
			logger.Layer("controller"), logger.Op("MFAController"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServerError)
		return
	}
	helpers.WriteJSONNoStore(w, http.StatusOK, resp)
}
