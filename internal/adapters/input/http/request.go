package http

import "repost-bridge/internal/domain"

type (
	// OAuthCallbackRequest struct - HTTP query request DTO of the authorize redirect
	OAuthCallbackRequest struct {
		Code  string `json:"code" validate:"required" query:"code"`
		State string `json:"state" validate:"required" query:"state"`
	}
)

// ToDomain converts the HTTP request to the domain request
func (r OAuthCallbackRequest) ToDomain() domain.OAuthCallbackRequest {
	return domain.OAuthCallbackRequest{
		Code:  r.Code,
		State: r.State,
	}
}
