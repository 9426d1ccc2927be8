package http

import (
	"repost-bridge/internal/ports/input"
	"repost-bridge/internal/ports/output"
	"repost-bridge/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Callback reply texts
const (
	// CallbackSuccessText is shown in the browser once the login is stored
	CallbackSuccessText = "you are now logged in and can use the repost function!"
	// CallbackFailureText is shown for every failed callback, whatever the cause
	CallbackFailureText = "we couldn't log you in. The link may have expired, please run the login command again."
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	oauth     input.OAuthService
	records   output.UserRecordStore
	states    output.LoginStateStore
	validator validator.Validator
}

// New func - Creates new HTTP handler
func New(oauth input.OAuthService, records output.UserRecordStore, states output.LoginStateStore) *HTTPHandler {
	return &HTTPHandler{
		oauth:     oauth,
		records:   records,
		states:    states,
		validator: validator.New(),
	}
}

// HealthCheck func
// HealthCheck godoc
// @Summary Health check
// @Description Checks that the user record store is reachable
// @Tags Health
// @Success 200 {object} ResponseBody
// @Failure 500 {object} ResponseBody
// @Router /health	[get]
// @Produce json
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	if err := hdl.records.Ping(c.UserContext()); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status: Success,
		Data:   HealthResponse{PendingLogins: hdl.states.Len()},
	})
}

// OAuthCallback func
/* oauth redirect */
// OAuthCallback godoc
// @Summary Complete a Mastodon login
// @Description Redirect target of the Mastodon authorize page
// @Tags OAuth
// @Success 200 {string} string
// @Failure 400 {string} string
// @Router /oauth_callback	[get]
// @Produce plain
// @param code query string true "authorization code"
// @param state query string true "state token"
func (hdl *HTTPHandler) OAuthCallback(c *fiber.Ctx) error {
	var request OAuthCallbackRequest
	if err := c.QueryParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).SendString(CallbackFailureText)
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		logrus.Warnf("Invalid OAuth callback: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString(CallbackFailureText)
	}

	domainReq := request.ToDomain()
	if err := hdl.oauth.Complete(c.UserContext(), domainReq.Code, domainReq.State); err != nil {
		logrus.Errorf("OAuth callback failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString(CallbackFailureText)
	}

	return c.Status(fiber.StatusOK).SendString(CallbackSuccessText)
}
