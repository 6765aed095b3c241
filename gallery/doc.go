// Package gallery persists exported drawings and serves them back.
//
// A [Drawing] is a saved PNG with the URL it can be loaded from. Every
// backend implements [Store]:
//
//   - [LocalStore] keeps drawings in a JSON file on disk, inlined as PNG
//     data URLs. It needs no network and is the fallback for everything.
//   - [Client] talks to a remote gallery [Server] over HTTP.
//   - [Hybrid] saves locally first and then tries the remote; when the
//     remote fails the local record is returned.
//
// [IDList] remembers which drawings were made on this machine ("my
// drawings"), independent of where they are stored.
//
// The [Server] stores PNGs as objects under "drawings/<id>.png" in a
// [Blobs] backend such as a [BucketBlobs] bucket and pushes every new drawing to
// websocket subscribers of "/gallery/live" through a [Feed].
//
// # Routes
//
//	POST   /save           {"image": "<data URL>", "id": "<optional id>"} -> Drawing
//	GET    /gallery        newest drawings first -> {"drawings": [...]}
//	GET    /gallery/live   websocket, one Drawing JSON message per save
//	GET    /drawings?ids=a,b                     -> {"drawings": [...]}
//	GET    /drawings/<id>.png                    -> image/png
//	DELETE /drawings/<id>                        -> {"success": true}
package gallery
