// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	. "github.com/q191201771/tspsi/pkg/mpegts"
)

func TestCalcCrc32(t *testing.T) {
	// CRC-32/MPEG-2的标准check值
	assert.Equal(t, uint32(0x0376e6e7), CalcCrc32(0xffffffff, []byte("123456789")))

	// 分段计算与一次计算结果一致
	crc := CalcCrc32(0xffffffff, []byte("12345"))
	crc = CalcCrc32(crc, []byte("6789"))
	assert.Equal(t, uint32(0x0376e6e7), crc)

	assert.Equal(t, uint32(0xffffffff), CalcCrc32(0xffffffff, nil))
}

func TestCalcCrc32VerifyToZero(t *testing.T) {
	pat := Pat{
		TransportStreamId: 1,
		ProgramElements: []PatProgramElement{
			{ProgramNumber: 1, Pid: 0x1000},
		},
	}
	s, err := pat.Pack()
	assert.Equal(t, nil, err)

	// 对含CRC在内的整个section计算，结果为0
	assert.Equal(t, uint32(0), CalcCrc32(0xffffffff, s.Raw))
}
