package main

//go:generate swag init -g cmd/resolver/main.go -o docs

// @title           AlphaPicks Resolver API
// @version         0.1.0
// @description     Resolves expired price predictions, awards points on the ledger, and mirrors audit records.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
