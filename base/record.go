package base

// Record is one log entry travelling through the pipeline
//
// A record is created by a producer with everything except Seq filled in; Seq is assigned by the
// producer gate inside the same critical section that appends the record to the staging buffer,
// so the order of records in a staging buffer always equals the order of their Seq values.
//
// The payload is already-expanded message text; printf-style expansion belongs to the facade
type Record struct {
	Seq       uint64 // dense, gap-free id assigned at Push time; drives final write order
	Level     Level
	Timestamp int64  // seconds since epoch
	ThreadTag string // opaque identifier of the producing goroutine
	Logger    string // name of the logger which produced the record
	File      string
	Line      int
	Payload   string
}
