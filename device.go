package pegasus

// Device is the GPU side of a pipeline. E is the recordable entry type, for
// example a command encoder.
//
// NewEntry is called exactly PoolSize times, from New. Flush and Cleanup are
// only called from Swing and Swing.Release on the presenting goroutine, never
// concurrently with each other.
type Device[E any] interface {
	// NewEntry creates one recordable entry for the pool.
	NewEntry() (E, error)

	// Flush submits the commands recorded into entry and leaves the entry
	// ready to be recorded again.
	Flush(entry E) error

	// Cleanup runs once after every presented frame, when the Swing
	// returned for it is released.
	Cleanup()
}

// EntryDestroyer is implemented by devices that release entries explicitly.
// DestroyEntry is called for every pool entry when the pipeline is closed,
// and for already created entries when New fails.
type EntryDestroyer[E any] interface {
	DestroyEntry(entry E)
}

func destroyEntry[E any](device any, entry E) {
	if d, ok := device.(EntryDestroyer[E]); ok {
		d.DestroyEntry(entry)
	}
}
