package zireael

// resourceTable is the engine-owned DEF_STRING/DEF_BLOB persistent resource
// store (spec §3, drawlist v1-extended): callers reference resources by a
// caller-chosen u32 id; lookup of an unknown id at execute time is a format
// error. Backed by a bump arena so resource bytes have stable addresses for
// the lifetime of the resource.
type resourceTable struct {
	pool    *arena
	byID    map[uint32][]byte
	maxRes  int
}

func newResourceTable(poolBytes, maxResources int) *resourceTable {
	return &resourceTable{
		pool:   newArena(poolBytes),
		byID:   make(map[uint32][]byte),
		maxRes: maxResources,
	}
}

// def stores src under id, replacing any prior definition under the same
// id. Fails with ErrLimit if the resource count cap or byte pool is
// exhausted.
func (t *resourceTable) def(id uint32, src []byte) error {
	if _, exists := t.byID[id]; !exists && len(t.byID) >= t.maxRes {
		return newErr(ErrLimit, "resource table at capacity")
	}
	stored, err := t.pool.alloc(src)
	if err != nil {
		return err
	}
	t.byID[id] = stored
	return nil
}

// free removes id. Freeing an unknown id is a no-op: FREE_* is permitted to
// race against a resource that was never defined or already freed, and the
// spec only treats an unknown id as an error for DRAW_* lookups, not FREE_*.
func (t *resourceTable) free(id uint32) {
	delete(t.byID, id)
}

// lookup returns the bytes stored under id. ok is false for an unknown id,
// which DRAW_TEXT_REF (the only opcode that resolves a resource id) must
// turn into ZR_ERR_FORMAT per spec §3.
func (t *resourceTable) lookup(id uint32) ([]byte, bool) {
	b, ok := t.byID[id]
	return b, ok
}

func (t *resourceTable) reset() {
	t.pool.reset()
	t.byID = make(map[uint32][]byte)
}
