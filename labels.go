package regionbuf

import (
	"github.com/philpearl/aeshash"
	"github.com/philpearl/stringbank"
)

// Our space costs are 8 bytes per entry. With a load factor of 0.5 (written as 2 here) that's
// increased to at least 16 bytes per entry
const loadFactor = 2

// labelIndex maps region labels to label sequence numbers, and sequence
// numbers to the region currently bound to the label. Labels are kept in a
// stringbank and the hash table holds only hashes and sequence numbers, so a
// table with many labelled regions adds little work for the GC.
//
// The zero value is ready to use.
type labelIndex struct {
	sb             stringbank.Stringbank
	table          labelTable
	oldTable       labelTable
	count          int
	oldTableCursor int
	offsets        intbank // sequence -> stringbank offset
	bound          intbank // sequence -> RegionID
}

// len returns the number of distinct labels ever seen
func (li *labelIndex) len() int {
	return li.count
}

// label returns the label with sequence number seq
func (li *labelIndex) label(seq int32) string {
	if seq <= 0 || int(seq) > li.count {
		return ""
	}
	return li.sb.Get(li.offsets.lookup(seq))
}

// bind records that the label with sequence seq now names region id. An id
// of 0 unbinds the label.
func (li *labelIndex) bind(seq int32, id RegionID) {
	li.bound.save(seq, int(id))
}

// boundTo returns the region the label with sequence seq names, or 0
func (li *labelIndex) boundTo(seq int32) RegionID {
	return RegionID(li.bound.lookup(seq))
}

// sequence looks up label and returns its sequence number. If the label is not
// known it is added when addNew is true. found reports whether the label was
// already present.
func (li *labelIndex) sequence(label string, addNew bool) (seq int32, found bool) {
	hash := aeshash.Hash(label)

	if addNew {
		// Only do resize work when writing so lookups never move entries
		li.resize()
	}

	if li.oldTable.len() != 0 {
		if addNew {
			li.resizeWork()
		}

		// The label may still be only in the old table. New labels always go in
		// the new table.
		_, seq := li.findInTable(li.oldTable, label, hash)
		if seq != 0 {
			return seq, true
		}
	}

	cursor, seq := li.findInTable(li.table, label, hash)
	if seq != 0 {
		return seq, true
	}

	if !addNew {
		return 0, false
	}

	li.count++
	seq = int32(li.count)
	li.table.hashes[cursor] = hash
	li.table.sequence[cursor] = seq

	offset := li.sb.Save(label)
	li.offsets.save(seq, offset)

	return seq, false
}

// findInTable looks for label in table. It returns the slot where the label is
// or should go, and the label's sequence number if present.
func (li *labelIndex) findInTable(table labelTable, label string, hashVal uint32) (cursor int, seq int32) {
	l := table.len()
	if l == 0 {
		return 0, 0
	}
	cursor = int(hashVal) & (l - 1)
	start := cursor
	for table.sequence[cursor] != 0 {
		if table.hashes[cursor] == hashVal {
			if s := table.sequence[cursor]; li.sb.Get(li.offsets.lookup(s)) == label {
				return cursor, s
			}
		}
		cursor++
		if cursor == l {
			cursor = 0
		}
		if cursor == start {
			panic("regionbuf: label table out of space")
		}
	}
	return cursor, 0
}

func (li *labelIndex) copyEntryToTable(table labelTable, hash uint32, seq int32) {
	l := table.len()
	cursor := int(hash) & (l - 1)
	start := cursor
	for table.sequence[cursor] != 0 {
		// entries being copied are never already present, so we only need a
		// free slot
		cursor++
		if cursor == l {
			cursor = 0
		}
		if cursor == start {
			panic("regionbuf: label table out of space (resize)")
		}
	}
	table.hashes[cursor] = hash
	table.sequence[cursor] = seq
}

func (li *labelIndex) resizeWork() {
	// Entries move 16 at a time on each write, which finishes the move before
	// the new table can fill up.
	l := li.oldTable.len()
	if l == 0 {
		return
	}
	// table sizes start at 16 and double, so are always a multiple of 16
	for k, seq := range li.oldTable.sequence[li.oldTableCursor : li.oldTableCursor+16] {
		if seq != 0 {
			li.copyEntryToTable(li.table, li.oldTable.hashes[k+li.oldTableCursor], seq)
			// Entries stay in the old table too. Deleting them would break
			// probing for entries that collided with them.
		}
	}
	li.oldTableCursor += 16
	if li.oldTableCursor >= l {
		li.oldTable = labelTable{}
		li.oldTableCursor = 0
	}
}

func (li *labelIndex) resize() {
	if li.table.hashes == nil {
		// Makes the zero value useful
		li.table = newLabelTable(16)
	}

	if li.count < li.table.len()/loadFactor {
		return
	}

	if li.oldTable.hashes == nil {
		li.oldTable, li.table = li.table, newLabelTable(li.table.len()*2)
	}
}

// labelTable is an open addressing hash table of label sequence numbers. A
// sequence of 0 marks an empty slot.
type labelTable struct {
	// hashes speed up resizing and let probing skip entries with a different
	// hash without fetching the label
	hashes   []uint32
	sequence []int32
}

func newLabelTable(cap int) labelTable {
	return labelTable{
		hashes:   make([]uint32, cap),
		sequence: make([]int32, cap),
	}
}

func (t labelTable) len() int {
	return len(t.hashes)
}
