// Package photo wraps the event gallery endpoints: paginated listing,
// multipart upload, and deletion.
package photo
