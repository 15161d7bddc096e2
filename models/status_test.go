package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{"archived", StatusConfirmed},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestTerminalAndKnownStatuses(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusInProgress))

	assert.True(t, IsKnownStatus(StatusInProgress))
	assert.False(t, IsKnownStatus("archived"))
}

func TestAddonUnlimited(t *testing.T) {
	stock := 3
	assert.True(t, AddonCatalogItem{AddonType: AddonTypeService, StockQuantity: &stock}.Unlimited())
	assert.True(t, AddonCatalogItem{AddonType: AddonTypeItem}.Unlimited())
	assert.False(t, AddonCatalogItem{AddonType: AddonTypeItem, StockQuantity: &stock}.Unlimited())
}
