// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var ErrShortBuffer = errors.New("tspsi: buffer too short")

// ----- pkg/mpegts ----------------------------------------------------------------------------------------------------

var (
	// ErrBadSync TS packet首字节不是0x47，流已失去同步，调用方需重新搜索同步点
	ErrBadSync = errors.New("tspsi.mpegts: bad sync byte")

	// ErrMalformed 包内部的长度字段与包大小矛盾
	ErrMalformed = errors.New("tspsi.mpegts: malformed length field")

	// ErrCrc32 section的CRC32校验失败，该section不可信
	ErrCrc32 = errors.New("tspsi.mpegts: section crc32 mismatch")

	// ErrWrongTableId 输入的section不是该表期望的table_id
	ErrWrongTableId = errors.New("tspsi.mpegts: unexpected table id")

	// ErrSectionTooLong section声明长度超过协议允许的上限
	ErrSectionTooLong = errors.New("tspsi.mpegts: section too long")

	ErrUnsupportedEncoding = errors.New("tspsi.mpegts: unsupported character encoding")

	ErrDvbTime = errors.New("tspsi.mpegts: invalid dvb time")

	ErrFileNotOpened = errors.New("tspsi.mpegts: file not opened")
)

func NewErrShortBuffer(need, actual int, msg string) error {
	return fmt.Errorf("%w. need=%d, actual=%d, msg=%s", ErrShortBuffer, need, actual, msg)
}

func NewErrBadSync(b byte) error {
	return fmt.Errorf("%w. b=0x%02x", ErrBadSync, b)
}

func NewErrMalformed(msg string) error {
	return fmt.Errorf("%w. msg=%s", ErrMalformed, msg)
}

func NewErrCrc32(expected, actual uint32) error {
	return fmt.Errorf("%w. expected=0x%08x, actual=0x%08x", ErrCrc32, expected, actual)
}

func NewErrWrongTableId(expected, actual uint8) error {
	return fmt.Errorf("%w. expected=0x%02x, actual=0x%02x", ErrWrongTableId, expected, actual)
}
