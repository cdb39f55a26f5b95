/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package memstore

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

const (
	tokenVersion byte = 1
	blobMagic         = "MSQ1"
)

type phase byte

const (
	phaseScan phase = iota + 1
	phaseEmit
)

// cursor is the resume point of a select, carried by the continuation key.
// lastKey is the last primary key examined. partialKB is what was already
// charged for the row after lastKey when a call stopped while reading it.
// sortID names a server side sort buffer and is 0 for key ordered scans.
type cursor struct {
	phase     phase
	lastKey   []types.Value
	matched   uint64
	returned  uint64
	sortID    uint64
	emitted   uint64
	partialKB uint64
}

var errBadToken = errors.New("malformed continuation key")

func putUvarint(w *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.Write(tmp[:n])
}

func (c *cursor) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tokenVersion)
	buf.WriteByte(byte(c.phase))
	putUvarint(&buf, c.matched)
	putUvarint(&buf, c.returned)
	putUvarint(&buf, c.sortID)
	putUvarint(&buf, c.emitted)
	putUvarint(&buf, c.partialKB)
	var key []byte
	if c.lastKey != nil {
		var err error
		if key, err = json.Marshal(c.lastKey); err != nil {
			return nil, err
		}
	}
	putUvarint(&buf, uint64(len(key)))
	buf.Write(key)
	return buf.Bytes(), nil
}

func decodeCursor(token []byte) (*cursor, error) {
	r := bytes.NewReader(token)
	version, err := r.ReadByte()
	if err != nil || version != tokenVersion {
		return nil, errBadToken
	}
	p, err := r.ReadByte()
	if err != nil || (phase(p) != phaseScan && phase(p) != phaseEmit) {
		return nil, errBadToken
	}
	c := &cursor{phase: phase(p)}
	for _, f := range []*uint64{&c.matched, &c.returned, &c.sortID, &c.emitted, &c.partialKB} {
		if *f, err = binary.ReadUvarint(r); err != nil {
			return nil, errBadToken
		}
	}
	n, err := binary.ReadUvarint(r)
	if err != nil || n > uint64(r.Len()) {
		return nil, errBadToken
	}
	if n > 0 {
		key := make([]byte, n)
		if _, err = io.ReadFull(r, key); err != nil {
			return nil, errBadToken
		}
		if err = json.Unmarshal(key, &c.lastKey); err != nil {
			return nil, fmt.Errorf("%v: %v", errBadToken, err)
		}
	}
	return c, nil
}

// encodeBlob produces the compiled form handed to clients.
func encodeBlob(text string) []byte {
	var buf bytes.Buffer
	buf.WriteString(blobMagic)
	putUvarint(&buf, uint64(len(text)))
	buf.WriteString(text)
	return buf.Bytes()
}

func decodeBlob(blob []byte) (string, error) {
	if !bytes.HasPrefix(blob, []byte(blobMagic)) {
		return "", errors.New("invalid prepared statement")
	}
	r := bytes.NewReader(blob[len(blobMagic):])
	n, err := binary.ReadUvarint(r)
	if err != nil || n != uint64(r.Len()) {
		return "", errors.New("invalid prepared statement")
	}
	text := make([]byte, n)
	_, _ = io.ReadFull(r, text)
	return string(text), nil
}
