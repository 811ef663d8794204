// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// SectionFragment section切片后对应单个TS包的payload
type SectionFragment struct {
	Payload []byte
	Pusi    bool // 是否为section起始，起始包的Payload已含pointer_field
}

// FragmentSection 将一个完整section切分为多个TS包payload
//
// 第一个分片头部插入pointer_field(0x00)，与SectionAssembler的组装逻辑互逆。
// 最后一个分片可能不足maxPayload，由调用方负责填充stuffing。
//
// @param raw:        完整section数据，从table_id开始
// @param maxPayload: 单个TS包可容纳的payload字节数，一般为188-4=184
//
func FragmentSection(raw []byte, maxPayload int) []SectionFragment {
	if len(raw) == 0 || maxPayload < 2 {
		return nil
	}

	var frags []SectionFragment

	// 首个分片带1字节pointer_field
	n := maxPayload - 1
	if n > len(raw) {
		n = len(raw)
	}
	first := make([]byte, 1+n)
	first[0] = 0x00
	copy(first[1:], raw[:n])
	frags = append(frags, SectionFragment{Payload: first, Pusi: true})
	raw = raw[n:]

	for len(raw) > 0 {
		n = maxPayload
		if n > len(raw) {
			n = len(raw)
		}
		frags = append(frags, SectionFragment{Payload: raw[:n]})
		raw = raw[n:]
	}
	return frags
}
