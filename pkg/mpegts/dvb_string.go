// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/q191201771/tspsi/pkg/base"
)

// ----------------------------------------------------------
// <en300468> <Annex A2>
// DVB字符串首字节为编码选择:
// 0x01~0x0b    单字节选择ISO 8859-5/6/7/8/9/10/11/13/14/15
// 0x10 + 2字节 选择ISO 8859-1~15
// 0x11         UCS-2(BE)
// 0x15         UTF-8
// >=0x20       无选择字节，默认表
// ----------------------------------------------------------

// 0x01~0x0b对应的字符集，nil表示保留值
var dvbSingleByteCharset = map[uint8]encoding.Encoding{
	0x01: charmap.ISO8859_5,
	0x02: charmap.ISO8859_6,
	0x03: charmap.ISO8859_7,
	0x04: charmap.ISO8859_8,
	0x05: charmap.ISO8859_9,
	0x06: charmap.ISO8859_10,
	0x07: charmap.Windows874, // ISO 8859-11即TIS-620，用兼容的Windows-874解
	0x09: charmap.ISO8859_13,
	0x0a: charmap.ISO8859_14,
	0x0b: charmap.ISO8859_15,
}

// 0x10后跟2字节选择值对应的字符集
var dvbTwoByteCharset = map[uint16]encoding.Encoding{
	0x0001: charmap.ISO8859_1,
	0x0002: charmap.ISO8859_2,
	0x0003: charmap.ISO8859_3,
	0x0004: charmap.ISO8859_4,
	0x0005: charmap.ISO8859_5,
	0x0006: charmap.ISO8859_6,
	0x0007: charmap.ISO8859_7,
	0x0008: charmap.ISO8859_8,
	0x0009: charmap.ISO8859_9,
	0x000a: charmap.ISO8859_10,
	0x000b: charmap.Windows874,
	0x000d: charmap.ISO8859_13,
	0x000e: charmap.ISO8859_14,
	0x000f: charmap.ISO8859_15,
}

// DecodeDvbString 解码DVB字符串为UTF-8
//
// 首字节>=0x20时按原样透传，不做默认表转换。
//
func DecodeDvbString(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	sel := b[0]
	if sel >= 0x20 {
		return string(b), nil
	}

	switch {
	case sel >= 0x01 && sel <= 0x0b:
		cm := dvbSingleByteCharset[sel]
		if cm == nil {
			return "", base.ErrUnsupportedEncoding
		}
		out, err := cm.NewDecoder().Bytes(stripControlBytes(b[1:]))
		if err != nil {
			return "", base.ErrUnsupportedEncoding
		}
		return string(out), nil
	case sel == 0x10:
		if len(b) < 3 {
			return "", base.NewErrShortBuffer(3, len(b), "dvb string charset selector")
		}
		cm := dvbTwoByteCharset[uint16(b[1])<<8|uint16(b[2])]
		if cm == nil {
			return "", base.ErrUnsupportedEncoding
		}
		out, err := cm.NewDecoder().Bytes(stripControlBytes(b[3:]))
		if err != nil {
			return "", base.ErrUnsupportedEncoding
		}
		return string(out), nil
	case sel == 0x11:
		cm := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		out, err := cm.NewDecoder().Bytes(b[1:])
		if err != nil {
			return "", base.ErrUnsupportedEncoding
		}
		return stripControlCodes(string(out)), nil
	case sel == 0x15:
		return stripControlCodes(string(b[1:])), nil
	}
	return "", base.ErrUnsupportedEncoding
}

// stripControlBytes 去掉ISO 8859系单字节编码中<en300468> <Table A.1>的控制码
//
// charmap解码会把0x80~0x9f映射成替换符，所以必须在解码前按原始字节处理。
// 0x8a是换行，转成'\n'，其余丢弃。
//
func stripControlBytes(b []byte) []byte {
	clean := true
	for _, c := range b {
		if c >= 0x80 && c <= 0x9f {
			clean = false
			break
		}
	}
	if clean {
		return b
	}
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 0x80 && c <= 0x9f {
			if c == 0x8a {
				out = append(out, '\n')
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// stripControlCodes 去掉UCS-2和UTF-8编码中<en300468> <Table A.1>的控制码
//
// 0x8a是换行，转成'\n'，其余C1区控制码丢弃
//
func stripControlCodes(s string) string {
	clean := true
	for _, r := range s {
		if r >= 0x80 && r <= 0x9f {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 0x80 && r <= 0x9f {
			if r == 0x8a {
				out = append(out, '\n')
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// EncodeDvbString 编码UTF-8字符串为DVB字符串
//
// 纯ASCII时直接输出，否则带0x15选择字节按UTF-8输出。
//
func EncodeDvbString(s string) []byte {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		return []byte(s)
	}
	b := make([]byte, 0, 1+len(s))
	b = append(b, 0x15)
	b = append(b, s...)
	return b
}
