// Package queue runs card extraction as background jobs on a Redis
// task queue. A Client enqueues card:extract tasks; a Worker consumes
// them, runs the extraction pipeline, and optionally stores successful
// results in the card library.
package queue
