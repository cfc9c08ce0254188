package api

import (
	"alcyxob/runlog/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgNoFitbitAccount = "No Fitbit account for this user"
	msgReauthorize     = "User must reauthorize with Fitbit"
	msgAuthFailed      = "Authentication failed"
	msgFitbitFailed    = "Failed to fetch data from Fitbit"
)

// FitbitHandler serves the Fitbit connection flow and activity import.
type FitbitHandler struct {
	fitbitService   service.FitbitService
	successRedirect string
	logger          logrus.FieldLogger
}

// NewFitbitHandler creates a FitbitHandler. When successRedirect is set the
// OAuth callback redirects there instead of answering with JSON.
func NewFitbitHandler(fitbitService service.FitbitService, successRedirect string, logger logrus.FieldLogger) *FitbitHandler {
	return &FitbitHandler{
		fitbitService:   fitbitService,
		successRedirect: successRedirect,
		logger:          logger,
	}
}

// respondWithFitbitError handles the errors every Fitbit endpoint shares.
func (h *FitbitHandler) respondWithFitbitError(c *gin.Context, err error, notConnected string) {
	switch {
	case errors.Is(err, service.ErrFitbitNotConnected):
		abortWithError(c, http.StatusBadRequest, notConnected)
	case errors.Is(err, service.ErrFitbitRefresh), errors.Is(err, service.ErrFitbitUpstream):
		// already logged by the service
		abortWithError(c, http.StatusInternalServerError, msgFitbitFailed)
	default:
		respondWithError(c, h.logger, err)
	}
}

// SignIn godoc
// @Summary Start the Fitbit authorization flow
// @Tags Fitbit
// @Security BearerAuth
// @Param json query bool false "Return the URL as JSON instead of redirecting"
// @Success 302 "Redirect to Fitbit"
// @Success 200 {object} gin.H "authUrl"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /fitbit/signin [get]
func (h *FitbitHandler) SignIn(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Not signed in")
		return
	}

	authURL, err := h.fitbitService.SignInURL(userID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}

	if asJSON, _ := strconv.ParseBool(c.Query("json")); asJSON {
		c.JSON(http.StatusOK, gin.H{"authUrl": authURL})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback godoc
// @Summary Fitbit OAuth redirect target
// @Tags Fitbit
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /fitbit/signin"
// @Success 200 {object} service.FitbitStatus
// @Success 302 "Redirect to the configured success page"
// @Failure 400 {object} gin.H "Missing or invalid code/state"
// @Failure 500 {object} gin.H "Authentication failed"
// @Router /fitbit/callback [get]
func (h *FitbitHandler) Callback(c *gin.Context) {
	account, err := h.fitbitService.CompleteSignIn(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		if errors.Is(err, service.ErrFitbitUpstream) {
			abortWithError(c, http.StatusInternalServerError, msgAuthFailed)
			return
		}
		respondWithError(c, h.logger, err)
		return
	}

	if h.successRedirect != "" {
		c.Redirect(http.StatusFound, h.successRedirect)
		return
	}
	c.JSON(http.StatusOK, service.FitbitStatus{Connected: true, FitbitID: account.FitbitUserID})
}

// Status godoc
// @Summary Whether the user has linked Fitbit
// @Tags Fitbit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.FitbitStatus
// @Router /fitbit/auth [get]
func (h *FitbitHandler) Status(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Not signed in")
		return
	}

	status, err := h.fitbitService.Status(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SignOut godoc
// @Summary Unlink Fitbit
// @Description Revokes the Fitbit token and deletes the stored account.
// @Tags Fitbit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "Fitbit token deleted"
// @Failure 400 {object} gin.H "No Fitbit account for this user"
// @Router /fitbit/signout [get]
// @Router /fitbit/auth [delete]
func (h *FitbitHandler) SignOut(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Not signed in")
		return
	}

	if err := h.fitbitService.SignOut(c.Request.Context(), userID); err != nil {
		h.respondWithFitbitError(c, err, msgNoFitbitAccount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fitbit token deleted"})
}

// Token godoc
// @Summary Current Fitbit access token
// @Description Refreshes the token first when it expires within the configured window.
// @Tags Fitbit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "accessToken"
// @Failure 400 {object} gin.H "User must reauthorize with Fitbit"
// @Failure 500 {object} gin.H "Refresh failed"
// @Router /fitbit/token [get]
func (h *FitbitHandler) Token(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Not signed in")
		return
	}

	accessToken, err := h.fitbitService.AccessToken(c.Request.Context(), userID)
	if err != nil {
		h.respondWithFitbitError(c, err, msgReauthorize)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// ListActivities godoc
// @Summary Fitbit activity log, mapped to workouts
// @Tags Fitbit
// @Produce json
// @Security BearerAuth
// @Param beforeDate query string false "yyyy-MM-dd, defaults to tomorrow"
// @Param afterDate query string false "yyyy-MM-dd"
// @Param sort query string false "desc with beforeDate, asc with afterDate"
// @Param limit query int false "1..100, default 20"
// @Param offset query int false "Offset"
// @Param hideNonWorkouts query bool false "Drop short or unclassified activities"
// @Success 200 {object} gin.H "activities"
// @Failure 400 {object} gin.H "Invalid query, or Fitbit not linked"
// @Failure 500 {object} gin.H "Fitbit request failed"
// @Router /fitbit/activities [get]
func (h *FitbitHandler) ListActivities(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Not signed in")
		return
	}

	items, err := h.fitbitService.ListActivities(c.Request.Context(), userID, service.ActivityQuery{
		BeforeDate:      c.Query("beforeDate"),
		AfterDate:       c.Query("afterDate"),
		Sort:            c.Query("sort"),
		Limit:           c.Query("limit"),
		Offset:          c.Query("offset"),
		HideNonWorkouts: c.Query("hideNonWorkouts"),
	})
	if err != nil {
		h.respondWithFitbitError(c, err, msgReauthorize)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": items})
}
