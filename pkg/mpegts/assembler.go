// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabytes"
)

type SectionEventType int

const (
	// SectionEventComplete 组装出一个完整且CRC校验通过的section
	SectionEventComplete SectionEventType = iota
	// SectionEventCrcError 组装出一个完整section但CRC校验失败，原始数据在Raw中
	SectionEventCrcError
	// SectionEventDiscontinuity continuity_counter跳变，之前缓存的数据已丢弃
	SectionEventDiscontinuity
)

func (t SectionEventType) String() string {
	switch t {
	case SectionEventComplete:
		return "Complete"
	case SectionEventCrcError:
		return "CrcError"
	case SectionEventDiscontinuity:
		return "Discontinuity"
	}
	return "Unknown"
}

type SectionEvent struct {
	Type    SectionEventType
	Pid     uint16
	Section Section // 仅Complete有效
	Raw     []byte  // 仅CrcError有效，完整section的原始数据
	Err     error   // 仅CrcError有效
}

// SectionAssembler 将TS包的payload重组为PSI/SI section
//
// 每个PID独立维护组装状态。处理三类边界情况:
//   - continuity_counter重复: 重复包，整包丢弃
//   - continuity_counter跳变: 丢弃当前PID缓存的数据，上抛Discontinuity事件
//   - 一个TS包payload中含多个背靠背section，或section跨多个TS包
//
// 非线程安全。
//
type SectionAssembler struct {
	pidCtx map[uint16]*sectionAssemblerCtx
}

type sectionAssemblerCtx struct {
	buf        *nazabytes.Buffer
	lastCc     int  // -1表示还未收到过包
	collecting bool // 是否正处于一个section的组装过程中
}

func NewSectionAssembler() *SectionAssembler {
	return &SectionAssembler{
		pidCtx: make(map[uint16]*sectionAssemblerCtx),
	}
}

// Feed 喂入一个TS包的payload部分
//
// @param payload: TS包去掉header和adaptation field之后的数据
// @param pusi:    TS包header中的payload_unit_start_indicator
// @param cc:      TS包header中的continuity_counter
//
// @return: 本次喂入产生的事件，可能为空，表示section尚未完整
//
func (sa *SectionAssembler) Feed(pid uint16, payload []byte, pusi bool, cc uint8) []SectionEvent {
	ctx := sa.pidCtx[pid]
	if ctx == nil {
		ctx = &sectionAssemblerCtx{
			buf:    nazabytes.NewBuffer(1024),
			lastCc: -1,
		}
		sa.pidCtx[pid] = ctx
	}

	var events []SectionEvent

	if ctx.lastCc >= 0 {
		if int(cc) == ctx.lastCc {
			// 重复包
			return nil
		}
		if int(cc) != (ctx.lastCc+1)%16 {
			events = append(events, SectionEvent{Type: SectionEventDiscontinuity, Pid: pid})
			ctx.buf.Reset()
			ctx.collecting = false
		}
	}
	ctx.lastCc = int(cc)

	if len(payload) == 0 {
		return events
	}

	if !pusi {
		if !ctx.collecting {
			// 没赶上section开头，等下一个pusi
			return events
		}
		ctx.buf.Write(payload)
		sa.drain(ctx, pid, &events)
		return events
	}

	// pusi == true，首字节是pointer_field
	pointer := int(payload[0])
	if 1+pointer > len(payload) {
		Log.Warnf("invalid pointer field. pid=%d, pointer=%d, len=%d", pid, pointer, len(payload))
		ctx.buf.Reset()
		ctx.collecting = false
		return events
	}

	// pointer之前的数据属于上一个section的尾部
	if ctx.collecting && pointer > 0 {
		ctx.buf.Write(payload[1 : 1+pointer])
		sa.drain(ctx, pid, &events)
	}

	ctx.buf.Reset()
	ctx.collecting = true
	ctx.buf.Write(payload[1+pointer:])
	sa.drain(ctx, pid, &events)
	return events
}

// Reset 清空指定PID的组装状态
func (sa *SectionAssembler) Reset(pid uint16) {
	delete(sa.pidCtx, pid)
}

func (sa *SectionAssembler) drain(ctx *sectionAssemblerCtx, pid uint16, events *[]SectionEvent) {
	for ctx.buf.Len() > 0 {
		rb := ctx.buf.Bytes()
		if rb[0] == 0xff {
			// stuffing，后面直到下一个pusi都是填充
			ctx.buf.Reset()
			ctx.collecting = false
			return
		}
		if ctx.buf.Len() < sectionHeaderSize {
			return
		}
		total, err := SectionTotalLength(rb)
		if err != nil {
			*events = append(*events, SectionEvent{Type: SectionEventCrcError, Pid: pid, Err: err})
			ctx.buf.Reset()
			ctx.collecting = false
			return
		}
		if ctx.buf.Len() < total {
			return
		}

		// buf的底层内存会被复用，拷出来再解析
		raw := make([]byte, total)
		copy(raw, rb[:total])
		ctx.buf.Skip(total)

		s, err := ParseSection(raw)
		if err != nil {
			*events = append(*events, SectionEvent{Type: SectionEventCrcError, Pid: pid, Raw: raw, Err: err})
			continue
		}
		*events = append(*events, SectionEvent{Type: SectionEventComplete, Pid: pid, Section: s})
	}
}
