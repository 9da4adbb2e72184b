package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/statemachine"
)

// GetOrderLifecycle returns the order status graph for informational
// purposes.
func GetOrderLifecycle(c *gin.Context) {
	transitions := gin.H{}
	terminal := make([]string, 0, 2)
	for _, status := range models.AllStatuses() {
		if statemachine.IsTerminal(status) {
			terminal = append(terminal, string(status))
			continue
		}
		next := statemachine.ValidNextStatuses(status)
		out := make([]string, len(next))
		for i, st := range next {
			out[i] = string(st)
		}
		transitions[string(status)] = out
	}
	c.JSON(http.StatusOK, gin.H{
		"transitions":       transitions,
		"terminal_statuses": terminal,
		"description":       "Cafeteria Order Lifecycle State Machine",
	})
}
