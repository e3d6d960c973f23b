// Package http implements the dashboard's HTTP handlers: the HTML page, the
// JSON API under /api/scorecard, exports, health checks, static assets and
// browser log collection.
//
// Handlers stay thin. They parse and validate the request, call the service
// layer and format the response. API failures are written as RFC 7807
// problem details through errors.ErrorHandler; the HTML page instead shows a
// single user-facing message:
//
//	missing input   404  Erro: Arquivo `grau-1.csv` não encontrado. ...
//	any other error 500  Ocorreu um erro inesperado ao processar os dados: <err>
//
// Filters arrive as query parameters, theme (repeatable) and status
// (all, present or absent), and are validated before use.
package http
