package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chrona/internal/models"
	"chrona/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// POST /tasks/
func (h *TaskHandler) Create(c *gin.Context) {
	actor := actorOf(c)
	log.Printf("[task][create] call by user=%q", actor.UserID)

	var req models.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	log.Printf("[task][create][ok] id=%s name=%q", task.ID, task.Name)
	c.JSON(http.StatusOK, task)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	task, err := h.service.GetByID(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, "[task][getByID]", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GET /tasks/?skip=&limit=
func (h *TaskHandler) GetAll(c *gin.Context) {
	skip, limit, err := pageParams(c)
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	tasks, err := h.service.GetAll(c.Request.Context(), actorOf(c), skip, limit)
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/by-name?name=
func (h *TaskHandler) GetByName(c *gin.Context) {
	task, err := h.service.GetByName(c.Request.Context(), actorOf(c), c.Query("name"))
	if err != nil {
		respondError(c, "[task][byName]", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	actor := actorOf(c)
	id := c.Param("id")
	log.Printf("[task][delete] call by user=%q id=%s", actor.UserID, id)

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, "[task][delete]", err)
		return
	}
	log.Printf("[task][delete][ok] id=%s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
