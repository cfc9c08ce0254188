package api

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves a user's workouts, summaries and exports.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	logger         logrus.FieldLogger
}

func NewWorkoutHandler(workoutService service.WorkoutService, logger logrus.FieldLogger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, logger: logger}
}

// WorkoutListResponse echoes the resolved user id with its workouts.
type WorkoutListResponse struct {
	ID       string           `json:"id"`
	Workouts []domain.Workout `json:"workouts"`
}

type DeleteWorkoutsRequest struct {
	WorkoutIDs []string `json:"workoutIds"`
}

func workoutQueryFromContext(c *gin.Context) service.WorkoutQuery {
	return service.WorkoutQuery{
		Modality:    c.Query("modality"),
		WorkoutType: c.Query("workoutType"),
		From:        c.Query("from"),
		To:          c.Query("to"),
		Sort:        c.Query("sort"),
		Order:       c.Query("order"),
		Limit:       c.Query("limit"),
	}
}

// ListWorkouts godoc
// @Summary List a user's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param modality query string false "Modality filter"
// @Param workoutType query string false "Workout type filter"
// @Param from query string false "Earliest start date"
// @Param to query string false "Latest start date"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param limit query int false "Maximum number of workouts"
// @Success 200 {object} WorkoutListResponse
// @Failure 400 {object} gin.H "Invalid query"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Another user's workouts"
// @Router /users/{userId}/workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID, workoutQueryFromContext(c))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, WorkoutListResponse{ID: userID.Hex(), Workouts: workouts})
}

// CreateWorkout godoc
// @Summary Log a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param workout body service.WorkoutInput true "Workout"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} gin.H "Validation error, with per-field messages"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Another user's workouts"
// @Failure 409 {object} gin.H "Fitbit activity already imported"
// @Router /users/{userId}/workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	var input service.WorkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// DeleteWorkout godoc
// @Summary Delete one workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} domain.Workout "The deleted workout"
// @Failure 400 {object} gin.H "Invalid workout ID"
// @Failure 403 {object} gin.H "Workout belongs to another user"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /users/{userId}/workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	workout, err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkouts godoc
// @Summary Delete several workouts
// @Description Deletes all listed workouts, or none if any of them belongs to someone else.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param ids body DeleteWorkoutsRequest true "Workout IDs"
// @Success 200 {object} gin.H "Number of deleted workouts"
// @Failure 400 {object} gin.H "Invalid body"
// @Failure 403 {object} gin.H "Some workouts belong to another user"
// @Router /users/{userId}/workouts [delete]
func (h *WorkoutHandler) DeleteWorkouts(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	var req DeleteWorkoutsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.WorkoutIDs))
	for _, raw := range req.WorkoutIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.workoutService.DeleteWorkouts(c.Request.Context(), userID, ids)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SummarizeWorkouts godoc
// @Summary Weekly and per-modality totals
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Success 200 {object} domain.WorkoutSummary
// @Router /users/{userId}/workouts/summary [get]
func (h *WorkoutHandler) SummarizeWorkouts(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	summary, err := h.workoutService.SummarizeWorkouts(c.Request.Context(), userID, workoutQueryFromContext(c))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportWorkouts godoc
// @Summary Export all workouts as CSV
// @Description Uploads a CSV file to object storage and returns a temporary download link.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Success 201 {object} service.ExportDetails
// @Router /users/{userId}/workouts/exports [post]
func (h *WorkoutHandler) ExportWorkouts(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	export, err := h.workoutService.ExportWorkouts(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, export)
}

// ListExports godoc
// @Summary List previous exports
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Success 200 {array} service.ExportDetails
// @Router /users/{userId}/workouts/exports [get]
func (h *WorkoutHandler) ListExports(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}

	exports, err := h.workoutService.ListExports(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exports)
}

// DeleteExport godoc
// @Summary Delete an export
// @Tags Workouts
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param exportId path string true "Export ID"
// @Success 204 "Deleted"
// @Failure 400 {object} gin.H "Invalid export ID"
// @Failure 403 {object} gin.H "Export belongs to another user"
// @Failure 404 {object} gin.H "Export not found"
// @Router /users/{userId}/workouts/exports/{exportId} [delete]
func (h *WorkoutHandler) DeleteExport(c *gin.Context) {
	userID, ok := resolveUserParam(c)
	if !ok {
		return
	}
	exportID, err := primitive.ObjectIDFromHex(c.Param("exportId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid export ID format")
		return
	}

	if err := h.workoutService.DeleteExport(c.Request.Context(), userID, exportID); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
