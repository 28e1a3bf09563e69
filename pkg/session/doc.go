/*
Package session implements session management and persistence orchestration.

It serializes turn processing per session ID, integrating in-process mutexes
with optional distributed locking so that replicas never interleave turns for
the same conversation, while distinct sessions proceed concurrently.
*/
package session
