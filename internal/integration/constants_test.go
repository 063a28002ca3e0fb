package integration_test

import "github.com/google/uuid"

const (
	TestJWTSecret  = "integration-secret"
	TestHallName   = "Hall 2"
	TestHallRows   = 6
	TestHallCols   = 5
	TestTicketCost = "12.50"
	TestEmail      = "guest@example.com"
)

var (
	TestHallId  = uuid.MustParse("7b5f6c0e-9a43-4d0b-8f0e-2b8f2c7c1a01")
	TestShowId  = uuid.MustParse("1d3a4e9f-5c2b-4f7a-9e61-0c4b8a2d3e02")
	TestMovieId = uuid.MustParse("c0a8f1e2-3b4d-4c5e-8f6a-7b8c9d0e1f03")
)
