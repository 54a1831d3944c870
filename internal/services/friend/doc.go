// Package friend wraps the friendship endpoints: confirmed friends, pending
// requests, and the send/accept/decline/remove flow.
package friend
