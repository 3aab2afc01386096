package response

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Message  string      `json:"message,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

func write(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success: statusCode < 400,
		Data:    data,
	})
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Navigate tells the browser shell which screen to show next.
func Navigate(w http.ResponseWriter, data interface{}, path string) {
	write(w, http.StatusOK, Response{
		Success:  true,
		Data:     data,
		Redirect: path,
	})
}

func Error(w http.ResponseWriter, statusCode int, err string) {
	write(w, statusCode, Response{
		Success: false,
		Error:   err,
	})
}

func BadRequest(w http.ResponseWriter, err string) {
	Error(w, http.StatusBadRequest, err)
}

// Unauthorized carries the login path so the shell can redirect.
func Unauthorized(w http.ResponseWriter, err string, loginPath string) {
	write(w, http.StatusUnauthorized, Response{
		Success:  false,
		Error:    err,
		Redirect: loginPath,
	})
}

func NotFound(w http.ResponseWriter, err string) {
	Error(w, http.StatusNotFound, err)
}

func Conflict(w http.ResponseWriter, err string) {
	Error(w, http.StatusConflict, err)
}

func BadGateway(w http.ResponseWriter, err string) {
	Error(w, http.StatusBadGateway, err)
}

func InternalError(w http.ResponseWriter, err string) {
	Error(w, http.StatusInternalServerError, err)
}
