package main

// @title Bookkeeping Backend API
// @version 1.0
// @description Counterparty ledgers, invoices, stock and bank statements over versioned records.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	Execute()
}
