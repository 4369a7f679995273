package credential

import (
	"encoding/json"
	"errors"
	"mask-drawing/internal/core/domain"
	"net/http"
)

// V1CredentialResponse is the scoped upload credential handed to the uploader
type V1CredentialResponse struct {
	PreSignedURL string            `json:"preSignedUrl"`
	Fields       domain.FormFields `json:"fields"`
}

// IssueCredentialV1 issues a credential for one upload. The role query selects
// the key namespace and defaults to original.
//
// The endpoint is unauthenticated: any caller can obtain a credential.
func (h *HandlerV1) IssueCredentialV1(w http.ResponseWriter, r *http.Request) {

	role, err := domain.ParseAssetRole(r.URL.Query().Get("role"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cred, issueErr := h.credentialService.Issue(r.Context(), role)
	switch {
	case errors.Is(issueErr, domain.ErrInvalidInputData):
		h.logger.Error("invalid credential request", "error", issueErr)
		http.Error(w, issueErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(issueErr, domain.ErrIssuerUnavailable):
		h.logger.Error("credential issuer unavailable", "error", issueErr)
		http.Error(w, "issuer unavailable", http.StatusServiceUnavailable)
		return
	case issueErr != nil:
		h.logger.Error("error issuing credential", "error", issueErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := V1CredentialResponse{
		PreSignedURL: cred.EndpointURL,
		Fields:       cred.Fields,
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
