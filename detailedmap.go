package regionbuf

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteDetailedMap writes a description of the store and of every region, in
// layout order, as fields of obj. It is meant for debugging layouts and for
// tools that draw a map of the buffer.
func (t *Table[T]) WriteDetailedMap(obj *jwriter.ObjectState) {
	obj.Name("elemSize").Int(t.store.ElemSize())
	obj.Name("length").Int(t.store.Len())
	obj.Name("capacity").Int(t.store.Cap())
	obj.Name("capacityBytes").Int(t.store.CapBytes())
	obj.Name("regionCount").Int(len(t.regions))

	w := obj.Name("regions")
	arr := w.Array()
	for _, r := range t.regions {
		ro := arr.Object()
		ro.Name("id").Int(int(r.id))
		if r.label != 0 {
			ro.Name("label").String(t.labels.label(r.label))
		}
		ro.Name("begin").Int(r.begin)
		ro.Name("end").Int(r.end)
		ro.Name("size").Int(r.size())
		ro.Name("byteOffset").Int(r.begin * t.store.ElemSize())
		ro.End()
	}
	arr.End()
}

// DetailedMap returns the output of WriteDetailedMap as a JSON object
func (t *Table[T]) DetailedMap() ([]byte, error) {
	w := jwriter.NewWriter()
	obj := w.Object()
	t.WriteDetailedMap(&obj)
	obj.End()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
