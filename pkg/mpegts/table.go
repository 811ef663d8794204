// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"fmt"

	"github.com/q191201771/naza/pkg/bele"
)

// SubtableId sub table的唯一标识
//
// 不同表用到的字段不同:
//   PAT: table_id + TableIdExtension(transport_stream_id)
//   PMT: table_id + TableIdExtension(program_number)
//   SDT: table_id + TableIdExtension(transport_stream_id) + OriginalNetworkId
//   EIT: table_id + TableIdExtension(service_id) + TransportStreamId + OriginalNetworkId
// 用不到的字段保持0
//
type SubtableId struct {
	TableId           uint8
	TableIdExtension  uint16
	TransportStreamId uint16
	OriginalNetworkId uint16
}

func (id SubtableId) String() string {
	return fmt.Sprintf("(%s tid=0x%02x ext=%d tsi=%d onid=%d)",
		DescribeTableId(id.TableId), id.TableId, id.TableIdExtension, id.TransportStreamId, id.OriginalNetworkId)
}

// SubtableIdOf 从section提取sub table标识
func SubtableIdOf(s Section) SubtableId {
	id := SubtableId{
		TableId:          s.TableId,
		TableIdExtension: s.TableIdExtension,
	}
	switch {
	case IsSdtTableId(s.TableId):
		if len(s.Payload) >= 2 {
			id.OriginalNetworkId = bele.BeUint16(s.Payload)
		}
	case IsEitTableId(s.TableId):
		if len(s.Payload) >= 4 {
			id.TransportStreamId = bele.BeUint16(s.Payload)
			id.OriginalNetworkId = bele.BeUint16(s.Payload[2:])
		}
	}
	return id
}

// VersionIsNewer 判断next相对prev是否为更新的版本
//
// version_number为模32计数，距离小于16视为更新
// <en300468> <5.1.4>
//
func VersionIsNewer(prev, next uint8) bool {
	if prev == next {
		return false
	}
	return (next-prev)&0x1f < 16
}

type tableCollectorCtx struct {
	version           uint8
	lastSectionNumber uint8
	sections          map[uint8]Section
	delivered         bool
}

// TableCollector 将section按sub table收集为完整的表
//
// 处理多section表的聚合与版本更新: 收到更新版本时整体替换并重新收集，
// 旧版本的迟到section直接丢弃。current_next_indicator为0的section忽略。
//
// 非线程安全。
//
type TableCollector struct {
	ctxs map[SubtableId]*tableCollectorCtx
}

func NewTableCollector() *TableCollector {
	return &TableCollector{
		ctxs: make(map[SubtableId]*tableCollectorCtx),
	}
}

// Feed 喂入一个section
//
// @return sections: sub table收齐时返回按section_number升序的全部section，否则nil
// @return ok:       本次喂入是否恰好使sub table首次收齐
//
// 表收齐后重复喂入同版本section不会再次返回，直到出现新版本。
//
func (tc *TableCollector) Feed(s Section) (sections []Section, ok bool) {
	if s.SectionSyntaxIndicator != 1 || s.CurrentNextIndicator != 1 {
		return nil, false
	}

	id := SubtableIdOf(s)
	ctx := tc.ctxs[id]
	if ctx != nil && s.VersionNumber != ctx.version {
		if !VersionIsNewer(ctx.version, s.VersionNumber) {
			// 旧版本的迟到section
			return nil, false
		}
		ctx = nil
	}
	if ctx == nil {
		ctx = &tableCollectorCtx{
			version:  s.VersionNumber,
			sections: make(map[uint8]Section),
		}
		tc.ctxs[id] = ctx
	}
	if ctx.delivered {
		return nil, false
	}

	ctx.sections[s.SectionNumber] = s
	ctx.lastSectionNumber = s.LastSectionNumber

	for i := uint8(0); ; i++ {
		if _, exist := ctx.sections[i]; !exist {
			return nil, false
		}
		if i == ctx.lastSectionNumber {
			break
		}
	}

	ctx.delivered = true
	sections = make([]Section, 0, int(ctx.lastSectionNumber)+1)
	for i := uint8(0); ; i++ {
		sections = append(sections, ctx.sections[i])
		if i == ctx.lastSectionNumber {
			break
		}
	}
	return sections, true
}

// Version 返回sub table当前收集中的版本号，没有时第二个返回值为false
func (tc *TableCollector) Version(id SubtableId) (uint8, bool) {
	ctx := tc.ctxs[id]
	if ctx == nil {
		return 0, false
	}
	return ctx.version, true
}

// Reset 清空所有收集状态
func (tc *TableCollector) Reset() {
	tc.ctxs = make(map[SubtableId]*tableCollectorCtx)
}
