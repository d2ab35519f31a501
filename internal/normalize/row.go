package normalize

import (
	"strconv"

	"github.com/mr30303/taxiDriver/internal/identity"
	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/registry"
)

// Row converts one source row into a canonical record. It returns false when
// the row has no usable coordinate pair; that is the only rejection reason.
func Row(schema registry.SourceSchema, row model.Row, rowNumber int) (model.Record, bool) {
	lat, ok := ParseCoordinate(FirstNonEmpty(row, schema.Latitude))
	if !ok {
		return model.Record{}, false
	}
	lng, ok := ParseCoordinate(FirstNonEmpty(row, schema.Longitude))
	if !ok {
		return model.Record{}, false
	}
	if !ValidLatLng(lat, lng) {
		return model.Record{}, false
	}

	name := FirstNonEmpty(row, schema.Name)
	roadAddress := FirstNonEmpty(row, schema.RoadAddress)
	lotAddress := FirstNonEmpty(row, schema.LotAddress)
	address := roadAddress
	if address == "" {
		address = lotAddress
	}

	category := FirstNonEmpty(row, schema.Category)
	ownership := FirstNonEmpty(row, schema.Ownership)
	openHours := ComposeOpenHours(row, schema.OpenHours)

	sourceRowID := FirstNonEmpty(row, schema.SourceRowID)
	if sourceRowID == "" {
		sourceRowID = strconv.Itoa(rowNumber)
	}

	dedupeKey := identity.DedupeKey(name, address, lat, lng)

	return model.Record{
		ID:              identity.DocID(dedupeKey),
		Lat:             lat,
		Lng:             lng,
		Type:            ClassifyType(category, ownership),
		Description:     Description(name, address, openHours),
		CreatedBy:       model.CreatedByMasterData,
		Source:          model.SourceMaster,
		LikedUserIDs:    []string{},
		DislikedUserIDs: []string{},
		Name:            name,
		RoadAddress:     roadAddress,
		LotAddress:      lotAddress,
		Address:         address,
		District:        FirstNonEmpty(row, schema.District),
		Phone:           FirstNonEmpty(row, schema.Phone),
		Category:        category,
		Ownership:       ownership,
		OpenHours:       openHours,
		SourceRegion:    schema.Region,
		SourceFile:      schema.File,
		SourceRowID:     sourceRowID,
		DedupeKey:       dedupeKey,
	}, true
}
