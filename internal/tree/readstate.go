package tree

// ReadState tracks how far the external scan has progressed for one
// directory.
type ReadState uint8

const (
	DirQueued ReadState = iota
	DirReading
	DirFinished
	DirAborted
)

func (s ReadState) String() string {
	switch s {
	case DirQueued:
		return "queued"
	case DirReading:
		return "reading"
	case DirFinished:
		return "finished"
	case DirAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ReadState returns this directory's scan state. A dot entry is never
// scanned itself, so it mirrors its parent's state.
func (d *DirInfo) ReadState() ReadState {
	if d.isDotEntry && d.parent != nil {
		return d.parent.ReadState()
	}
	return d.readState
}

// SetReadState transitions the scan state. "aborted" has higher
// priority than "finished": a finish that races with an abort is
// dropped, and this is not treated as an error.
func (d *DirInfo) SetReadState(newState ReadState) {
	if d.readState == DirAborted && newState == DirFinished {
		return
	}
	d.readState = newState
}

// ReadJobAdded records one more in-flight read unit for this subtree,
// on this node and every ancestor.
func (d *DirInfo) ReadJobAdded() {
	d.pendingReadJobs++

	if d.parent != nil {
		d.parent.ReadJobAdded()
	}
}

// ReadJobFinished records completion of one read unit, on this node and
// every ancestor.
func (d *DirInfo) ReadJobFinished() {
	d.pendingReadJobs--

	if d.parent != nil {
		d.parent.ReadJobFinished()
	}
}

// ReadJobAborted marks this node and every ancestor as aborted.
// Aborted is sticky against a later finish.
func (d *DirInfo) ReadJobAborted() {
	d.readState = DirAborted

	if d.parent != nil {
		d.parent.ReadJobAborted()
	}
}

// PendingReadJobs returns the count of in-flight read units below this
// node, including its own.
func (d *DirInfo) PendingReadJobs() int { return d.pendingReadJobs }

// IsBusy reports whether anything is still happening anywhere below
// this directory.
func (d *DirInfo) IsBusy() bool {
	if d.pendingReadJobs > 0 && d.readState != DirAborted {
		return true
	}

	if s := d.ReadState(); s == DirReading || s == DirQueued {
		return true
	}

	return false
}

// IsFinished reports whether scanning below this directory is done.
func (d *DirInfo) IsFinished() bool {
	return !d.IsBusy()
}
