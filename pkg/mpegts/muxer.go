// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// OnTsPacketFn 打包出一个188字节TS包时的回调，b的生命周期只在回调内
type OnTsPacketFn func(b []byte)

// Muxer 将PSI/SI表打包为TS包输出
//
// 每个PID独立维护continuity_counter。section超过单包容量时切片为多包，
// 末包payload不足时以0xff填充。
//
// 非线程安全。
//
type Muxer struct {
	onTsPacket OnTsPacketFn
	ccs        map[uint16]uint8
}

func NewMuxer(onTsPacket OnTsPacketFn) *Muxer {
	return &Muxer{
		onTsPacket: onTsPacket,
		ccs:        make(map[uint16]uint8),
	}
}

// WriteSection 将一个section打包为一个或多个TS包输出
//
// section未打包过原始数据时先打包，即Raw为空时调用其Pack
//
func (m *Muxer) WriteSection(pid uint16, s *Section) error {
	raw := s.Raw
	if raw == nil {
		var err error
		raw, err = s.Pack()
		if err != nil {
			return err
		}
	}

	frags := FragmentSection(raw, TsPacketSize-TsPacketHeaderSize)
	for _, frag := range frags {
		b := make([]byte, TsPacketSize)
		h := TsPacketHeader{
			Pid:        pid,
			Adaptation: AdaptationFieldControlNo,
			Cc:         m.nextCc(pid),
		}
		if frag.Pusi {
			h.PayloadUnitStart = 1
		}
		h.PackTo(b)
		n := copy(b[TsPacketHeaderSize:], frag.Payload)
		for i := TsPacketHeaderSize + n; i < TsPacketSize; i++ {
			b[i] = 0xff
		}
		m.onTsPacket(b)
	}
	return nil
}

func (m *Muxer) WritePat(pat *Pat) error {
	s, err := pat.Pack()
	if err != nil {
		return err
	}
	return m.WriteSection(PidPat, &s)
}

// WritePmt 打包PMT，PID由调用方指定，需与PAT中声明的一致
func (m *Muxer) WritePmt(pid uint16, pmt *Pmt) error {
	s, err := pmt.Pack()
	if err != nil {
		return err
	}
	return m.WriteSection(pid, &s)
}

func (m *Muxer) WriteSdt(sdt *Sdt) error {
	s, err := sdt.Pack()
	if err != nil {
		return err
	}
	return m.WriteSection(PidSdt, &s)
}

func (m *Muxer) WriteEit(eit *Eit) error {
	s, err := eit.Pack()
	if err != nil {
		return err
	}
	return m.WriteSection(PidEit, &s)
}

// WriteRawPacket 透传一个TS包，continuity_counter重写为本Muxer内该PID的计数
func (m *Muxer) WriteRawPacket(b []byte) error {
	if len(b) != TsPacketSize && len(b) != TsPacketSize204 {
		return nil
	}
	out := make([]byte, TsPacketSize)
	copy(out, b[:TsPacketSize])
	pid := uint16(out[1]&0x1f)<<8 | uint16(out[2])
	// 无payload的包不递增continuity_counter，沿用该PID上一个包的计数
	if (out[3]>>4)&0x3 == AdaptationFieldControlOnly {
		out[3] = out[3]&0xf0 | (m.ccs[pid]+15)%16
	} else {
		out[3] = out[3]&0xf0 | m.nextCc(pid)
	}
	m.onTsPacket(out)
	return nil
}

func (m *Muxer) nextCc(pid uint16) uint8 {
	cc := m.ccs[pid]
	m.ccs[pid] = (cc + 1) % 16
	return cc
}
