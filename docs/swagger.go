// Package docs DaRoutes Wiki API.
//
// Backend of the Dar es Salaam daladala wiki. Editors compose routes from
// ordered stops, terminals, fares and photos and move them through review;
// the public site reads published content only.
//
// docs.go holds the OpenAPI document served at /swagger. Regenerate it from
// the handler annotations with:
//
//	swag init -g cmd/api/main.go -o docs
package docs
