package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrintBoard(t *testing.T) {
	order := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var buf bytes.Buffer
	printBoard(&buf, order, 3)
	assert.Equal(t, "round 1: 1 2 3\nround 2: 3 2 1\nround 3: 1 2 3\n", buf.String())
}

func TestPrintBoardWithoutTeams(t *testing.T) {
	var buf bytes.Buffer
	printBoard(&buf, nil, 3)
	assert.Empty(t, buf.String())
}
