// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// CRC-32/MPEG-2
// 多项式0x04c11db7，初值0xffffffff，高位先行，无最终异或
//
// 注意，PSI section使用的是该变种，而不是hash/crc32提供的反射型IEEE变种

var crc32Table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
		crc32Table[i] = crc
	}
}

// CalcCrc32
//
// @param crc: 初值，首次计算传入0xffffffff，分段计算时传入上一段的结果
//
func CalcCrc32(crc uint32, b []byte) uint32 {
	for _, v := range b {
		crc = (crc << 8) ^ crc32Table[uint8(crc>>24)^v]
	}
	return crc
}
