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

func TestParseDvbTime(t *testing.T) {
	// <en300468> <Annex C>的参考样例
	out, err := ParseDvbTime([]byte{0xe1, 0x71, 0x15, 0x00, 0x00})
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Date(2016, 11, 21, 15, 0, 0, 0, time.UTC), out)

	// 非法BCD
	_, err = ParseDvbTime([]byte{0xe1, 0x71, 0x1a, 0x00, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrDvbTime))

	// 数值超界
	_, err = ParseDvbTime([]byte{0xe1, 0x71, 0x24, 0x00, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrDvbTime))

	_, err = ParseDvbTime([]byte{0xe1, 0x71})
	assert.Equal(t, true, errors.Is(err, base.ErrShortBuffer))
}

func TestPackDvbTime(t *testing.T) {
	cases := []time.Time{
		time.Date(2016, 11, 21, 15, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC),
		time.Date(1999, 2, 28, 12, 34, 56, 0, time.UTC),
	}
	for _, item := range cases {
		out, err := ParseDvbTime(PackDvbTime(item))
		assert.Equal(t, nil, err)
		assert.Equal(t, item, out)
	}

	assert.Equal(t, []byte{0xe1, 0x71, 0x15, 0x00, 0x00}, PackDvbTime(cases[0]))
}

func TestBcdDuration(t *testing.T) {
	// 45分钟
	out, err := ParseBcdDuration([]byte{0x00, 0x45, 0x00})
	assert.Equal(t, nil, err)
	assert.Equal(t, 45*time.Minute, out)

	// 1小时28分45秒
	out, err = ParseBcdDuration([]byte{0x01, 0x28, 0x45})
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Hour+28*time.Minute+45*time.Second, out)

	assert.Equal(t, []byte{0x00, 0x45, 0x00}, PackBcdDuration(45*time.Minute))
	assert.Equal(t, []byte{0x01, 0x28, 0x45}, PackBcdDuration(time.Hour+28*time.Minute+45*time.Second))

	_, err = ParseBcdDuration([]byte{0x0a, 0x00, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrDvbTime))
}

func TestDecodeDvbString(t *testing.T) {
	// 无选择字节，原样透传
	out, err := DecodeDvbString([]byte("Hello"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hello", out)

	out, err = DecodeDvbString(nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, "", out)

	// 0x15 UTF-8
	out, err = DecodeDvbString(append([]byte{0x15}, []byte("你好")...))
	assert.Equal(t, nil, err)
	assert.Equal(t, "你好", out)

	// 0x01 ISO 8859-5西里尔
	out, err = DecodeDvbString([]byte{0x01, 0xbf, 0xe0, 0xd8, 0xd2, 0xd5, 0xe2})
	assert.Equal(t, nil, err)
	assert.Equal(t, "Привет", out)

	// 控制码，0x8a转换行，其余丢弃
	out, err = DecodeDvbString([]byte{0x01, 0x41, 0x8a, 0x42, 0x86, 0x43})
	assert.Equal(t, nil, err)
	assert.Equal(t, "A\nBC", out)

	// UCS-2里的控制码同样处理
	out, err = DecodeDvbString([]byte{0x11, 0x00, 0x41, 0x00, 0x8a, 0x00, 0x42})
	assert.Equal(t, nil, err)
	assert.Equal(t, "A\nB", out)

	// 0x10 + 两字节选择ISO 8859-15
	out, err = DecodeDvbString([]byte{0x10, 0x00, 0x0f, 0xa4})
	assert.Equal(t, nil, err)
	assert.Equal(t, "€", out)

	// 0x11 UCS-2大端
	out, err = DecodeDvbString([]byte{0x11, 0x00, 0x41, 0x00, 0x42})
	assert.Equal(t, nil, err)
	assert.Equal(t, "AB", out)

	// 保留的选择字节
	_, err = DecodeDvbString([]byte{0x08, 0x41})
	assert.Equal(t, true, errors.Is(err, base.ErrUnsupportedEncoding))
	_, err = DecodeDvbString([]byte{0x1f, 0x41})
	assert.Equal(t, true, errors.Is(err, base.ErrUnsupportedEncoding))
}

func TestEncodeDvbString(t *testing.T) {
	assert.Equal(t, []byte("Hello"), EncodeDvbString("Hello"))
	assert.Equal(t, append([]byte{0x15}, []byte("你好")...), EncodeDvbString("你好"))

	// 编码解码互逆
	for _, item := range []string{"", "plain", "中文台", "café"} {
		out, err := DecodeDvbString(EncodeDvbString(item))
		assert.Equal(t, nil, err)
		assert.Equal(t, item, out)
	}
}
