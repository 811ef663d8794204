// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// stream_type取值
// <iso13818-1.pdf> <Table 2-29> <page 66/174>
const (
	StreamTypeMpeg1Video = 0x01
	StreamTypeMpeg2Video = 0x02
	StreamTypeMpeg1Audio = 0x03
	StreamTypeMpeg2Audio = 0x04
	StreamTypePrivate    = 0x06 // DVB字幕、teletext等走这个
	StreamTypeAAC        = 0x0f
	StreamTypeH264       = 0x1b
	StreamTypeH265       = 0x24
	StreamTypeAC3        = 0x81
	StreamTypeScte35     = 0x86
)

func DescribeStreamType(typ uint8) string {
	switch typ {
	case StreamTypeMpeg1Video:
		return "MPEG1-Video"
	case StreamTypeMpeg2Video:
		return "MPEG2-Video"
	case StreamTypeMpeg1Audio:
		return "MPEG1-Audio"
	case StreamTypeMpeg2Audio:
		return "MPEG2-Audio"
	case StreamTypePrivate:
		return "Private"
	case StreamTypeAAC:
		return "AAC"
	case StreamTypeH264:
		return "H264"
	case StreamTypeH265:
		return "H265"
	case StreamTypeAC3:
		return "AC3"
	case StreamTypeScte35:
		return "SCTE35"
	}
	return "Unknown"
}
