// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"errors"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tspsi/pkg/base"
	. "github.com/q191201771/tspsi/pkg/mpegts"
)

func TestParsePesHeader(t *testing.T) {
	// PTS only，pts=90000
	b := []byte{
		0x00, 0x00, 0x01, // packet_start_code_prefix
		0xe0,       // stream_id
		0x00, 0x08, // PES_packet_length
		0x80,                         // '10' flags
		0x80,                         // PTS_DTS_flags='10'
		0x05,                         // PES_header_data_length
		0x21, 0x00, 0x05, 0xbf, 0x21, // PTS
	}
	pes, length, err := ParsePesHeader(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, 14, length)
	assert.Equal(t, uint8(0xe0), pes.StreamId)
	assert.Equal(t, uint64(90000), pes.Pts)
	assert.Equal(t, uint64(90000), pes.Dts)

	_, _, err = ParsePesHeader([]byte{0x00, 0x00, 0x02, 0xe0, 0x00, 0x00, 0x80, 0x00, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))

	_, _, err = ParsePesHeader([]byte{0x00, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrShortBuffer))

	// PTS_DTS_flags声明有PTS但header data length为0
	_, _, err = ParsePesHeader([]byte{0x00, 0x00, 0x01, 0xe0, 0x00, 0x00, 0x80, 0x80, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))

	// 声明有PTS+DTS但header data length只够PTS
	_, _, err = ParsePesHeader([]byte{
		0x00, 0x00, 0x01, 0xe0, 0x00, 0x00, 0x80, 0xc0, 0x05,
		0x31, 0x00, 0x05, 0xbf, 0x21,
	})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))
}
