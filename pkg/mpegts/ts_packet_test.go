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
	"time"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tspsi/pkg/base"
	. "github.com/q191201771/tspsi/pkg/mpegts"
)

func TestTsPacketPackParse(t *testing.T) {
	in := TsPacket{
		Header: TsPacketHeader{
			PayloadUnitStart: 1,
			Pid:              0x1000,
			Cc:               7,
		},
		Payload: []byte{0x00, 0x01, 0x02, 0x03},
	}
	b, err := in.Pack()
	assert.Equal(t, nil, err)
	assert.Equal(t, TsPacketSize, len(b))
	assert.Equal(t, SyncByte, b[0])

	out, err := ParseTsPacket(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x1000), out.Header.Pid)
	assert.Equal(t, uint8(1), out.Header.PayloadUnitStart)
	assert.Equal(t, uint8(7), out.Header.Cc)
	// payload不足时通过adaptation stuffing补齐，parse侧原样取回末尾4字节
	assert.Equal(t, in.Payload, out.Payload[len(out.Payload)-4:])
}

func TestTsPacketFullPayload(t *testing.T) {
	payload := make([]byte, TsPacketSize-TsPacketHeaderSize)
	for i := range payload {
		payload[i] = uint8(i)
	}
	in := TsPacket{
		Header:  TsPacketHeader{Pid: 0x100},
		Payload: payload,
	}
	b, err := in.Pack()
	assert.Equal(t, nil, err)

	out, err := ParseTsPacket(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, AdaptationFieldControlNo, out.Header.Adaptation)
	assert.Equal(t, payload, out.Payload)
}

func TestTsPacket204(t *testing.T) {
	in := TsPacket{
		Header:  TsPacketHeader{Pid: 0x42},
		Payload: []byte{0xaa},
	}
	b, err := in.Pack()
	assert.Equal(t, nil, err)
	b = append(b, make([]byte, 16)...)
	assert.Equal(t, TsPacketSize204, len(b))

	out, err := ParseTsPacket(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x42), out.Header.Pid)
}

func TestTsPacketBadInput(t *testing.T) {
	_, err := ParseTsPacket(make([]byte, 100))
	assert.Equal(t, true, errors.Is(err, base.ErrShortBuffer))

	b := make([]byte, TsPacketSize)
	b[0] = 0x46
	_, err = ParseTsPacket(b)
	assert.Equal(t, true, errors.Is(err, base.ErrBadSync))

	// adaptation长度越界
	b[0] = 0x47
	b[3] = 0x30 // adaptation + payload
	b[4] = 200
	_, err = ParseTsPacket(b)
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))
}

func TestAdaptationPcr(t *testing.T) {
	in := TsPacket{
		Header: TsPacketHeader{Pid: 0x100},
		AdaptationField: &TsPacketAdaptation{
			RandomAccess: 1,
			PcrFlag:      1,
			Pcr:          Pcr{Base: 0x1ffffffff, Ext: 299},
		},
		Payload: []byte{0x01, 0x02},
	}
	b, err := in.Pack()
	assert.Equal(t, nil, err)

	out, err := ParseTsPacket(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, AdaptationFieldControlBoth, out.Header.Adaptation)
	assert.Equal(t, uint8(1), out.AdaptationField.RandomAccess)
	assert.Equal(t, uint8(1), out.AdaptationField.PcrFlag)
	assert.Equal(t, uint64(0x1ffffffff), out.AdaptationField.Pcr.Base)
	assert.Equal(t, uint16(299), out.AdaptationField.Pcr.Ext)
}

func TestAdaptationPrivateData(t *testing.T) {
	in := TsPacketAdaptation{
		PrivateDataFlag: 1,
		PrivateData:     []byte{0xde, 0xad, 0xbe, 0xef},
	}
	b, err := in.Pack()
	assert.Equal(t, nil, err)

	out, err := ParseTsPacketAdaptation(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out.PrivateData)

	// private data length超出adaptation field长度
	_, err = ParseTsPacketAdaptation([]byte{0x02, 0x02, 0xc8})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))

	// 只有flag没有length字节
	_, err = ParseTsPacketAdaptation([]byte{0x01, 0x02})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformed))
}

func TestPcrValue(t *testing.T) {
	p := Pcr{Base: 90000, Ext: 0}
	assert.Equal(t, uint64(27000000), p.Value())
	assert.Equal(t, time.Second, p.Duration())
}

func TestResyncTsPacket(t *testing.T) {
	b := make([]byte, 400)
	// 偶然出现的0x47，且+188处不是0x47，应被跳过
	b[2] = 0x47
	b[10] = 0x47
	b[10+TsPacketSize] = 0x47
	assert.Equal(t, 10, ResyncTsPacket(b, TsPacketSize))

	assert.Equal(t, -1, ResyncTsPacket(make([]byte, 100), TsPacketSize))
}
