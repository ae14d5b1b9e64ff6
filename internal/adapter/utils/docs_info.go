// Package utils holds id helpers shared by ingestion, handlers and the job layer.
//
// Local dependencies:
//
//	docker run -p 6379:6379 -d redis
//	docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant
//
// Regenerating swagger docs:
//
//	swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package utils
