// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/tspsi/pkg/base"
)

const (
	DescriptorTagAC3                        = 0x6a
	DescriptorTagAVCVideo                   = 0x28
	DescriptorTagComponent                  = 0x50
	DescriptorTagContent                    = 0x54
	DescriptorTagDataStreamAlignment        = 0x6
	DescriptorTagEnhancedAC3                = 0x7a
	DescriptorTagExtendedEvent              = 0x4e
	DescriptorTagExtension                  = 0x7f
	DescriptorTagISO639LanguageAndAudioType = 0xa
	DescriptorTagLocalTimeOffset            = 0x58
	DescriptorTagMaximumBitrate             = 0xe
	DescriptorTagNetworkName                = 0x40
	DescriptorTagParentalRating             = 0x55
	DescriptorTagPrivateDataIndicator       = 0xf
	DescriptorTagPrivateDataSpecifier       = 0x5f
	DescriptorTagRegistration               = 0x5
	DescriptorTagService                    = 0x48
	DescriptorTagShortEvent                 = 0x4d
	DescriptorTagStreamIdentifier           = 0x52
	DescriptorTagSubtitling                 = 0x59
	DescriptorTagTeletext                   = 0x56
	DescriptorTagVBIData                    = 0x45
	DescriptorTagVBITeletext                = 0x46
)

// Descriptor 通用descriptor，tag + length + data
//
// <iso13818-1.pdf> <2.6> 以及 <en300468> <6>
//
type Descriptor struct {
	Tag    uint8
	Length uint8
	Data   []byte
}

// ParseDescriptors 解析descriptor loop，直到b耗尽
func ParseDescriptors(b []byte) ([]Descriptor, error) {
	var ds []Descriptor
	for len(b) > 0 {
		if len(b) < 2 {
			return ds, base.NewErrShortBuffer(2, len(b), "parse descriptor")
		}
		var d Descriptor
		d.Tag = b[0]
		d.Length = b[1]
		if 2+int(d.Length) > len(b) {
			return ds, base.NewErrShortBuffer(2+int(d.Length), len(b), "parse descriptor body")
		}
		d.Data = b[2 : 2+d.Length]
		ds = append(ds, d)
		b = b[2+d.Length:]
	}
	return ds, nil
}

// PackDescriptors 打包descriptor loop
func PackDescriptors(ds []Descriptor) []byte {
	var b []byte
	for _, d := range ds {
		b = append(b, d.Tag, uint8(len(d.Data)))
		b = append(b, d.Data...)
	}
	return b
}

// ---------------------------------------------------------------------------
// 以下为常用descriptor的具体视图

// ServiceDescriptor service_descriptor(0x48)
// <en300468> <6.2.33>
type ServiceDescriptor struct {
	ServiceType  uint8
	ProviderName string
	ServiceName  string
}

func (d Descriptor) Service() (sd ServiceDescriptor, err error) {
	if d.Tag != DescriptorTagService {
		return sd, base.NewErrMalformed("not a service descriptor")
	}
	b := d.Data
	if len(b) < 2 {
		return sd, base.NewErrShortBuffer(2, len(b), "service descriptor")
	}
	sd.ServiceType = b[0]
	pl := int(b[1])
	if 2+pl+1 > len(b) {
		return sd, base.NewErrShortBuffer(2+pl+1, len(b), "service descriptor provider")
	}
	sd.ProviderName, err = DecodeDvbString(b[2 : 2+pl])
	if err != nil {
		return
	}
	nl := int(b[2+pl])
	if 3+pl+nl > len(b) {
		return sd, base.NewErrShortBuffer(3+pl+nl, len(b), "service descriptor name")
	}
	sd.ServiceName, err = DecodeDvbString(b[3+pl : 3+pl+nl])
	return
}

func NewServiceDescriptor(serviceType uint8, provider, name string) Descriptor {
	pb := EncodeDvbString(provider)
	nb := EncodeDvbString(name)
	data := make([]byte, 0, 2+len(pb)+1+len(nb))
	data = append(data, serviceType, uint8(len(pb)))
	data = append(data, pb...)
	data = append(data, uint8(len(nb)))
	data = append(data, nb...)
	return Descriptor{Tag: DescriptorTagService, Length: uint8(len(data)), Data: data}
}

// ShortEventDescriptor short_event_descriptor(0x4d)
// <en300468> <6.2.37>
type ShortEventDescriptor struct {
	LanguageCode string // 3字符，比如"eng"
	EventName    string
	Text         string
}

func (d Descriptor) ShortEvent() (sed ShortEventDescriptor, err error) {
	if d.Tag != DescriptorTagShortEvent {
		return sed, base.NewErrMalformed("not a short event descriptor")
	}
	b := d.Data
	if len(b) < 4 {
		return sed, base.NewErrShortBuffer(4, len(b), "short event descriptor")
	}
	sed.LanguageCode = string(b[:3])
	nl := int(b[3])
	if 4+nl+1 > len(b) {
		return sed, base.NewErrShortBuffer(4+nl+1, len(b), "short event name")
	}
	sed.EventName, err = DecodeDvbString(b[4 : 4+nl])
	if err != nil {
		return
	}
	tl := int(b[4+nl])
	if 5+nl+tl > len(b) {
		return sed, base.NewErrShortBuffer(5+nl+tl, len(b), "short event text")
	}
	sed.Text, err = DecodeDvbString(b[5+nl : 5+nl+tl])
	return
}

func NewShortEventDescriptor(lang, name, text string) Descriptor {
	nb := EncodeDvbString(name)
	tb := EncodeDvbString(text)
	data := make([]byte, 0, 3+1+len(nb)+1+len(tb))
	data = append(data, lang[:3]...)
	data = append(data, uint8(len(nb)))
	data = append(data, nb...)
	data = append(data, uint8(len(tb)))
	data = append(data, tb...)
	return Descriptor{Tag: DescriptorTagShortEvent, Length: uint8(len(data)), Data: data}
}

// Iso639Language ISO_639_language_descriptor(0x0a)中的一项
// <iso13818-1.pdf> <2.6.18>
type Iso639Language struct {
	LanguageCode string
	AudioType    uint8
}

func (d Descriptor) Iso639Languages() ([]Iso639Language, error) {
	if d.Tag != DescriptorTagISO639LanguageAndAudioType {
		return nil, base.NewErrMalformed("not an iso639 language descriptor")
	}
	var ls []Iso639Language
	b := d.Data
	for len(b) >= 4 {
		ls = append(ls, Iso639Language{LanguageCode: string(b[:3]), AudioType: b[3]})
		b = b[4:]
	}
	return ls, nil
}

// ContentElement content_descriptor(0x54)中的一项
// <en300468> <6.2.9>
type ContentElement struct {
	ContentNibbleLevel1 uint8
	ContentNibbleLevel2 uint8
	UserByte            uint8
}

func (d Descriptor) ContentElements() ([]ContentElement, error) {
	if d.Tag != DescriptorTagContent {
		return nil, base.NewErrMalformed("not a content descriptor")
	}
	var es []ContentElement
	b := d.Data
	for len(b) >= 2 {
		es = append(es, ContentElement{
			ContentNibbleLevel1: b[0] >> 4,
			ContentNibbleLevel2: b[0] & 0x0f,
			UserByte:            b[1],
		})
		b = b[2:]
	}
	return es, nil
}
