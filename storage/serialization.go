// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"bytes"
	"fmt"

	"github.com/go-crypt/x/blake2b"

	"github.com/poiesic/recollect/core"
)

// snapshotChecksumSize is the width of the BLAKE2b digest prefixed to
// every stored snapshot.
const snapshotChecksumSize = 16

func snapshotChecksum(payload []byte) []byte {
	h, _ := blake2b.New(snapshotChecksumSize, nil)
	h.Write(payload)
	return h.Sum(nil)
}

// MarshalSnapshot serializes index data into a self-verifying envelope:
// a BLAKE2b digest of the payload followed by the payload itself.
func MarshalSnapshot(data *core.TextToLocationIndexData) []byte {
	payload := make([]byte, core.TextToLocationIndexDataMUS.Size(*data))
	core.TextToLocationIndexDataMUS.Marshal(*data, payload)

	buf := make([]byte, 0, snapshotChecksumSize+len(payload))
	buf = append(buf, snapshotChecksum(payload)...)
	return append(buf, payload...)
}

// UnmarshalSnapshot verifies and decodes a snapshot envelope. Truncated
// bytes, a digest mismatch and undecodable payloads all report
// ErrCorruptSnapshot; decoded data with mismatched parallel lists is
// rejected by validation.
func UnmarshalSnapshot(envelope []byte) (*core.TextToLocationIndexData, error) {
	if len(envelope) < snapshotChecksumSize {
		return nil, fmt.Errorf("%w: truncated envelope (%d bytes)", ErrCorruptSnapshot, len(envelope))
	}
	digest, payload := envelope[:snapshotChecksumSize], envelope[snapshotChecksumSize:]
	if !bytes.Equal(digest, snapshotChecksum(payload)) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	data, _, err := core.TextToLocationIndexDataMUS.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}
