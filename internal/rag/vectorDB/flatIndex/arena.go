package flatIndex

import (
	"fmt"
	"sort"

	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

// arena owns document and chunk records behind stable handles.
// rows maps a vector row to the chunk stored for it.
type arena struct {
	docs      map[vectorDB.DocHandle]vectorDB.DocumentRecord
	chunks    map[vectorDB.ChunkHandle]vectorDB.ChunkRecord
	rows      []vectorDB.ChunkHandle
	docByID   map[string]vectorDB.DocHandle
	nextDoc   vectorDB.DocHandle
	nextChunk vectorDB.ChunkHandle
}

type checkpoint struct {
	rows      int
	nextDoc   vectorDB.DocHandle
	nextChunk vectorDB.ChunkHandle
	doc       *vectorDB.DocumentRecord
}

func newArena() *arena {
	return &arena{
		docs:    make(map[vectorDB.DocHandle]vectorDB.DocumentRecord),
		chunks:  make(map[vectorDB.ChunkHandle]vectorDB.ChunkRecord),
		docByID: make(map[string]vectorDB.DocHandle),
	}
}

func (a *arena) checkpoint(docID string) checkpoint {
	cp := checkpoint{rows: len(a.rows), nextDoc: a.nextDoc, nextChunk: a.nextChunk}
	if h, ok := a.docByID[docID]; ok {
		prev := a.docs[h]
		cp.doc = &prev
	}
	return cp
}

func (a *arena) rollback(cp checkpoint) {
	for h := cp.nextChunk; h < a.nextChunk; h++ {
		delete(a.chunks, h)
	}
	for h := cp.nextDoc; h < a.nextDoc; h++ {
		delete(a.docByID, a.docs[h].Id)
		delete(a.docs, h)
	}
	if cp.doc != nil {
		a.docs[cp.doc.Handle] = *cp.doc
	}
	a.rows = a.rows[:cp.rows]
	a.nextDoc = cp.nextDoc
	a.nextChunk = cp.nextChunk
}

// upsertDocument appends a new document record or reuses the one with the same id.
func (a *arena) upsertDocument(doc vectorDB.DocumentRecord, added int) vectorDB.DocHandle {
	if h, ok := a.docByID[doc.Id]; ok && doc.Id != "" {
		existing := a.docs[h]
		existing.TotalChunks += added
		a.docs[h] = existing
		return h
	}
	h := a.nextDoc
	a.nextDoc++
	doc.Handle = h
	doc.TotalChunks = added
	a.docs[h] = doc
	if doc.Id != "" {
		a.docByID[doc.Id] = h
	}
	return h
}

func (a *arena) appendChunk(c vectorDB.ChunkRecord) {
	c.Handle = a.nextChunk
	a.nextChunk++
	c.Row = len(a.rows)
	a.chunks[c.Handle] = c
	a.rows = append(a.rows, c.Handle)
}

// resolve returns the chunk and document stored for row. ok is false for rows that
// have no complete record.
func (a *arena) resolve(row int) (vectorDB.ChunkRecord, vectorDB.DocumentRecord, bool) {
	if row < 0 || row >= len(a.rows) {
		return vectorDB.ChunkRecord{}, vectorDB.DocumentRecord{}, false
	}
	c, ok := a.chunks[a.rows[row]]
	if !ok {
		return vectorDB.ChunkRecord{}, vectorDB.DocumentRecord{}, false
	}
	d, ok := a.docs[c.Document]
	if !ok {
		return vectorDB.ChunkRecord{}, vectorDB.DocumentRecord{}, false
	}
	return c, d, true
}

func (a *arena) documentList() []vectorDB.DocumentRecord {
	out := make([]vectorDB.DocumentRecord, 0, len(a.docs))
	for _, d := range a.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (a *arena) chunkList() []vectorDB.ChunkRecord {
	out := make([]vectorDB.ChunkRecord, 0, len(a.rows))
	for _, h := range a.rows {
		out = append(out, a.chunks[h])
	}
	return out
}

// rebuildArena restores an arena from persisted records and checks that every
// row in [0, rows) is owned by exactly one chunk of a known document.
func rebuildArena(docs []vectorDB.DocumentRecord, chunks []vectorDB.ChunkRecord, rows int) (*arena, error) {
	a := newArena()
	for _, d := range docs {
		if _, dup := a.docs[d.Handle]; dup {
			return nil, fmt.Errorf("duplicate document handle %d", d.Handle)
		}
		a.docs[d.Handle] = d
		if d.Id != "" {
			a.docByID[d.Id] = d.Handle
		}
		if d.Handle >= a.nextDoc {
			a.nextDoc = d.Handle + 1
		}
	}

	if len(chunks) != rows {
		return nil, fmt.Errorf("%d chunk records for %d vectors", len(chunks), rows)
	}
	a.rows = make([]vectorDB.ChunkHandle, rows)
	seen := make([]bool, rows)
	for _, c := range chunks {
		if c.Row < 0 || c.Row >= rows || seen[c.Row] {
			return nil, fmt.Errorf("chunk %d has invalid row %d", c.Handle, c.Row)
		}
		if _, ok := a.docs[c.Document]; !ok {
			return nil, fmt.Errorf("chunk %d references unknown document %d", c.Handle, c.Document)
		}
		if _, dup := a.chunks[c.Handle]; dup {
			return nil, fmt.Errorf("duplicate chunk handle %d", c.Handle)
		}
		seen[c.Row] = true
		a.rows[c.Row] = c.Handle
		a.chunks[c.Handle] = c
		if c.Handle >= a.nextChunk {
			a.nextChunk = c.Handle + 1
		}
	}
	return a, nil
}
