package progress

// Ledger is the durable per-user progression record. All mutations go through
// the quiz session state machine; nothing else writes these fields.
type Ledger struct {
	UnlockedLevel int         `json:"unlockedLevel"`
	TotalScore    int         `json:"totalScore"`
	StarsByLevel  map[int]int `json:"starsByLevel"`
}

// NewLedger returns the fresh state every user starts from.
func NewLedger() Ledger {
	return Ledger{
		UnlockedLevel: 1,
		TotalScore:    0,
		StarsByLevel:  map[int]int{},
	}
}

// normalize repairs zero-value ledgers loaded from storage.
func (l *Ledger) normalize() {
	if l.UnlockedLevel < 1 {
		l.UnlockedLevel = 1
	}
	if l.StarsByLevel == nil {
		l.StarsByLevel = map[int]int{}
	}
}

// AddScore applies a scoring delta to the cumulative total.
func (l *Ledger) AddScore(delta int) {
	l.TotalScore += delta
}

// RecordResult folds a finished session into the ledger. Unlocking is
// monotonic: a perfect run at the frontier level opens the next one, and a
// level's stars only ever improve.
func (l *Ledger) RecordResult(level, stars int, perfect bool) {
	l.normalize()
	if perfect && level >= l.UnlockedLevel {
		l.UnlockedLevel = level + 1
	}
	if stars > l.StarsByLevel[level] {
		l.StarsByLevel[level] = stars
	}
}

// clone returns a deep copy so stores never hand out shared maps.
func (l Ledger) clone() Ledger {
	out := l
	out.StarsByLevel = make(map[int]int, len(l.StarsByLevel))
	for k, v := range l.StarsByLevel {
		out.StarsByLevel[k] = v
	}
	return out
}
