// Package services talks to the movie backend over HTTP.
//
// # Endpoints
//
// [BackendService] issues three kinds of GET requests against a configured origin:
//   - random movies (default /movies/random), a JSON array
//   - random watchlist movies (default /movies/watchlist/random), a JSON array
//   - a poster (default /image?id=<id>), raw image bytes
//
// [BackendService.Raw] performs an unchecked GET for the `api get` command.
//
// # Wire format
//
// Array elements are either flat records (Id, Name, ProductionYear, CommunityRating, optional Image)
// or pairs ({Movie, MovieImage}). Ids may be strings or numbers. Inline image data is standard base64
// and is decoded to raw bytes with [DecodeImageData] before a [models.Movie] is built.
//
// # Failure policy
//
// Requests are never retried. Errors wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrDecode] : malformed JSON or base64
//   - [shared.ErrPosterNotFound] : the image endpoint answered 404
//   - [shared.ErrServiceUnavailable] : the circuit breaker is open
//
// Consecutive transport failures and 5xx responses trip a gobreaker circuit breaker.
// Poster requests wait on a token-bucket limiter so a grid of cards does not burst the backend.
package services
