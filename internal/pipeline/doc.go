// Package pipeline runs a full directory harvest: category discovery followed
// by a bounded fan-out of one pagination task per category.
//
// Tasks run concurrently up to the configured pool size using errgroup.
// Each task writes its result into a collector guarded by a single mutex;
// the aggregate document is assembled only after every task has joined.
//
// Design decision: A task never returns an error to the errgroup. A failing
// or panicking category yields an empty result for that category so that its
// siblings keep running and the document still lists every discovered
// category.
package pipeline
