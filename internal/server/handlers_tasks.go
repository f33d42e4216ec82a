package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/slatehq/slate/internal/store"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Campaign: q.Get("campaign"),
		Status:   q.Get("status"),
		Assignee: q.Get("assignee"),
		Label:    q.Get("label"),
	}

	// Content calendar range filter: both bounds or neither.
	if from, to := q.Get("startDate"), q.Get("endDate"); from != "" && to != "" {
		fromT, err := store.ParseDate("startDate", from)
		if err != nil {
			respondError(w, err)
			return
		}
		toT, err := store.ParseDate("endDate", to)
		if err != nil {
			respondError(w, err)
			return
		}
		filter.ScheduledFrom = &fromT
		filter.ScheduledTo = &toT
	}

	tasks, err := s.store.ListTasks(filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// handleCalendar returns the month bucket for the content calendar view.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", "VALIDATION_ERROR")
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", "VALIDATION_ERROR")
		return
	}

	tasks, err := s.store.TasksForMonth(month, year)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	task, err := s.store.CreateTask(body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	task, err := s.store.UpdateTask(chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleUpdateTaskStatus is the drag-and-drop write path: it sets status
// and position on one task and nothing else.
func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	task, err := s.store.UpdateTaskStatus(chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.store.ReorderTasks(body); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tasks reordered"})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	task, err := s.store.AddComment(chi.URLParam(r, "id"), body)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}
