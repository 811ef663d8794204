// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"time"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/tspsi/pkg/base"
)

// ----------------------------------------------------------
// <en300468> <Annex C>
// UTC时间编码为5字节:
// MJD          [16b] 修正儒略日
// hour   (BCD) [8b]
// minute (BCD) [8b]
// second (BCD) [8b]
// 时长编码为3字节BCD: hour minute second
// ----------------------------------------------------------

const DvbTimeSize = 5

// ParseDvbTime 解析5字节MJD+BCD格式的UTC时间
func ParseDvbTime(b []byte) (time.Time, error) {
	if len(b) < DvbTimeSize {
		return time.Time{}, base.NewErrShortBuffer(DvbTimeSize, len(b), "parse dvb time")
	}
	mjd := float64(bele.BeUint16(b))
	hour, err := fromBcd(b[2])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := fromBcd(b[3])
	if err != nil {
		return time.Time{}, err
	}
	second, err := fromBcd(b[4])
	if err != nil {
		return time.Time{}, err
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, base.ErrDvbTime
	}

	// MJD转公历，公式见<en300468> <Annex C>
	yp := int((mjd - 15078.2) / 365.25)
	mp := int((mjd - 14956.1 - float64(int(float64(yp)*365.25))) / 30.6001)
	day := int(mjd) - 14956 - int(float64(yp)*365.25) - int(float64(mp)*30.6001)
	k := 0
	if mp == 14 || mp == 15 {
		k = 1
	}
	year := yp + k + 1900
	month := mp - 1 - k*12

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// PackDvbTime 打包为5字节MJD+BCD格式
func PackDvbTime(t time.Time) []byte {
	t = t.UTC()
	year := t.Year() - 1900
	month := int(t.Month())
	day := t.Day()
	l := 0
	if month == 1 || month == 2 {
		l = 1
	}
	mjd := 14956 + day + int(float64(year-l)*365.25) + int(float64(month+1+l*12)*30.6001)

	b := make([]byte, DvbTimeSize)
	b[0] = uint8(mjd >> 8)
	b[1] = uint8(mjd)
	b[2] = toBcd(t.Hour())
	b[3] = toBcd(t.Minute())
	b[4] = toBcd(t.Second())
	return b
}

// ParseBcdDuration 解析3字节BCD格式的时长
func ParseBcdDuration(b []byte) (time.Duration, error) {
	if len(b) < 3 {
		return 0, base.NewErrShortBuffer(3, len(b), "parse bcd duration")
	}
	hour, err := fromBcd(b[0])
	if err != nil {
		return 0, err
	}
	minute, err := fromBcd(b[1])
	if err != nil {
		return 0, err
	}
	second, err := fromBcd(b[2])
	if err != nil {
		return 0, err
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second, nil
}

// PackBcdDuration 打包为3字节BCD格式，精度为秒
func PackBcdDuration(d time.Duration) []byte {
	total := int(d / time.Second)
	return []byte{
		toBcd(total / 3600),
		toBcd(total / 60 % 60),
		toBcd(total % 60),
	}
}

func fromBcd(v uint8) (int, error) {
	hi := int(v >> 4)
	lo := int(v & 0x0f)
	if hi > 9 || lo > 9 {
		return 0, base.ErrDvbTime
	}
	return hi*10 + lo, nil
}

func toBcd(v int) uint8 {
	return uint8(v/10<<4 | v%10)
}
