package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the standard response wrapper. Every endpoint returns either
// {success:true, data:...} or {success:false, error:...}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope with a message.
func Created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}
