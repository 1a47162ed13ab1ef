package main

// General API documentation for swaggo. Run `swag init -g cmd/labd/docs.go` to regenerate.
//
// @title           labd API
// @version         1.0
// @description     HTTP API for the text classification and summarization lab pipelines.
//
// @contact.name   labd maintainers
// @contact.url    https://github.com/your-org/labd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
