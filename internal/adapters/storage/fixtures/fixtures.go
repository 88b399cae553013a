package fixtures

import (
	"time"

	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/ports/auth"
)

// Set es el padrón inicial del modo local y del comando seed.
type Set struct {
	Zones   []roster.Zone
	Points  []roster.FeedingPoint
	Cats    []roster.Cat
	Members []roster.Member
}

// Default devuelve una copia nueva en cada llamada.
func Default() Set {
	return Set{
		Zones:   zones(),
		Points:  points(),
		Cats:    cats(),
		Members: members(),
	}
}

func zones() []roster.Zone {
	return []roster.Zone{
		{ID: "zone1", Name: "第1区画", Description: "丘陵・工場エリア"},
		{ID: "zone2", Name: "第2区画", Description: "港湾・倉庫エリア"},
		{ID: "zone3", Name: "第3区画", Description: "住宅・公園エリア"},
		{ID: "zone4", Name: "第4区画", Description: "海岸・防波堤エリア"},
	}
}

func points() []roster.FeedingPoint {
	return []roster.FeedingPoint{
		{ID: "p01", Name: "①", ZoneID: "zone1"},
		{ID: "p02", Name: "②", ZoneID: "zone1"},
		{ID: "p03", Name: "③", ZoneID: "zone1"},
		{ID: "p04", Name: "④", ZoneID: "zone1"},
		{ID: "p05", Name: "⑤", ZoneID: "zone1"},
		{ID: "p06", Name: "⑥", ZoneID: "zone1"},
		{ID: "p07", Name: "⑦", ZoneID: "zone1"},
		{ID: "p08", Name: "⑧ 高フェンス", ZoneID: "zone2"},
		{ID: "p09", Name: "⑨ JA", ZoneID: "zone2"},
		{ID: "p10", Name: "⑩ 第二の丘", ZoneID: "zone2"},
		{ID: "p11", Name: "⑪ センコー", ZoneID: "zone2"},
		{ID: "p12", Name: "⑫ どんつき", ZoneID: "zone2"},
		{ID: "p13", Name: "⑬ 木材置き場", ZoneID: "zone2"},
		{ID: "p14", Name: "⑭ 日通", ZoneID: "zone2"},
		{ID: "p15", Name: "⑮ ガラス工場", ZoneID: "zone2"},
		{ID: "p16", Name: "⑯ イスズ", ZoneID: "zone3"},
		{ID: "p17", Name: "⑰ 山口水産", ZoneID: "zone3"},
		{ID: "p18", Name: "⑱ 船三艘", ZoneID: "zone3"},
		{ID: "p19", Name: "⑲ マキタ", ZoneID: "zone3"},
		{ID: "p20", Name: "⑳ ヤクルト", ZoneID: "zone3"},
		{ID: "p21", Name: "㉑ テヅカ", ZoneID: "zone3"},
		{ID: "p22", Name: "㉒ シャープ", ZoneID: "zone3"},
		{ID: "p23", Name: "㉓ 駐車場", ZoneID: "zone3"},
		{ID: "p24", Name: "㉔", ZoneID: "zone4"},
		{ID: "p25", Name: "㉕", ZoneID: "zone4"},
	}
}

func cat(id, name, features, zoneID, pointID string, sub ...string) roster.Cat {
	return roster.Cat{
		ID:          id,
		Name:        name,
		Features:    features,
		ImageURL:    "https://picsum.photos/seed/" + id + "/400/400",
		ZoneID:      zoneID,
		PointID:     pointID,
		SubPointIDs: sub,
		Status:      roster.StatusUnknown,
	}
}

// Solo hay gatos registrados en los puntos del 2do y 3er sector.
func cats() []roster.Cat {
	return []roster.Cat{
		// ⑧ 高フェンス
		cat("cat-p08-1", "黒っぽいキジ", "キジトラ (黒っぽい)", "zone2", "p08"),
		cat("cat-p08-2", "白シャム", "シャム系 (白)", "zone2", "p08"),
		cat("cat-p08-3", "シャム黒", "シャム系 (黒)", "zone2", "p08"),
		cat("cat-p08-4", "黒1カギ尻尾", "黒猫 (カギ尻尾)", "zone2", "p08"),
		cat("cat-p08-5", "パンチョ", "ハチワレ (白多め)", "zone2", "p08"),
		cat("cat-p08-6", "黒2", "黒猫 (新規)", "zone2", "p08"),
		cat("cat-p08-7", "ハチワレ黒多め", "ハチワレ (黒多め)", "zone2", "p08"),

		// ⑨ JA
		cat("cat-p09-1", "新規グレーキジ", "キジトラ (グレー)", "zone2", "p09", "p11"),

		// ⑩ 第二の丘
		cat("cat-p10-1", "鼻むけちゃん", "キジトラ 白 鼻に特徴", "zone2", "p10"),
		cat("cat-p10-2", "姫ちゃん", "三毛", "zone2", "p10"),
		cat("cat-p10-3", "黒", "黒猫 単色", "zone2", "p10"),
		cat("cat-p10-4", "新規キジ（茶色）", "キジトラ 茶色", "zone2", "p10"),
		cat("cat-p10-5", "キーちゃん", "キジ白", "zone2", "p10"),
		cat("cat-p10-6", "尾長いキジ", "キジトラ 尻尾長い", "zone2", "p10"),
		cat("cat-p10-7", "銀ちゃん", "銀色 (サバトラ?)", "zone2", "p10", "p15"),

		// ⑫ どんつき
		cat("cat-p12-1", "マーブル", "マーブル柄", "zone2", "p12"),
		cat("cat-p12-2", "茶トラ", "茶トラ", "zone2", "p12"),
		cat("cat-p12-3", "サビ", "サビ", "zone2", "p12"),
		cat("cat-p12-4", "白キジ濃い", "キジ白 (濃いめ)", "zone2", "p12"),
		cat("cat-p12-5", "白キジ薄い", "キジ白 (薄め)", "zone2", "p12"),
		cat("cat-p12-6", "カリン様", "特徴不明", "zone2", "p12"),
		cat("cat-p12-7", "ミケ", "三毛", "zone2", "p12"),
		cat("cat-p12-8", "新規グレー", "グレー", "zone2", "p12", "p13"),
		cat("cat-p12-9", "新規ネコ", "特徴不明", "zone2", "p12", "p13", "p14"),

		// ⑬ 木材置き場
		cat("cat-p13-1", "白", "白猫", "zone2", "p13", "p14"),
		cat("cat-p13-2", "コアラ", "コアラ顔", "zone2", "p13", "p14"),
		cat("cat-p13-3", "グレーと白のキジ", "キジ白 (グレー)", "zone2", "p13", "p14"),
		cat("cat-p13-4", "キジ", "キジトラ", "zone2", "p13", "p11"),

		// ⑭ 日通
		cat("cat-p14-1", "ほくろくん", "顔にほくろ模様", "zone2", "p14"),
		cat("cat-p14-2", "リノ母", "メス", "zone2", "p14"),
		cat("cat-p14-3", "マスク", "マスク模様", "zone2", "p14"),
		cat("cat-p14-4", "グイちゃん", "特徴不明", "zone2", "p14"),

		// ⑮ ガラス工場
		cat("cat-p15-1", "黒ハート", "黒猫 (ハート模様?)", "zone2", "p15"),
		cat("cat-p15-2", "黒中毛", "黒猫 (中毛)", "zone2", "p15"),
		cat("cat-p15-3", "ラブちゃん", "特徴不明", "zone2", "p15"),

		// ⑯ イスズ
		cat("cat-p16-1", "こんぶちゃん", "黒系", "zone3", "p16"),
		cat("cat-p16-2", "ミケ", "三毛", "zone3", "p16"),

		// ⑰ 山口水産
		cat("cat-p17-1", "パウチくん", "パウチ好き", "zone3", "p17", "p16", "p20"),

		// ⑱ 船三艘
		cat("cat-p18-1", "三ちゃん", "キジトラ", "zone3", "p18"),

		// ⑲ マキタ
		cat("cat-p19-1", "ウーロン", "うろうろ", "zone3", "p19", "p16"),
		cat("cat-p19-2", "おはぎちゃん", "黒/サビ (おはぎ)", "zone3", "p19", "p23"),
		cat("cat-p19-3", "あずきちゃん", "特徴不明", "zone3", "p19"),
		cat("cat-p19-4", "だんごちゃん", "特徴不明", "zone3", "p19"),

		// ⑳ ヤクルト
		cat("cat-p20-1", "パインくん", "茶白", "zone3", "p20"),
		cat("cat-p20-2", "白キジ濃い", "キジ白 (濃いめ)", "zone3", "p20"),
		cat("cat-p20-3", "キジ", "キジトラ", "zone3", "p20"),

		// ㉑ テヅカ
		cat("cat-p21-1", "キジ", "キジトラ", "zone3", "p21"),
		cat("cat-p21-2", "シャム", "シャム系", "zone3", "p21"),
		cat("cat-p21-3", "みかん", "茶トラ", "zone3", "p21"),

		// ㉒ シャープ
		cat("cat-p22-1", "黒猫スマート2", "黒猫", "zone3", "p22"),
		cat("cat-p22-2", "黒猫スマート1", "黒猫 (男子)", "zone3", "p22"),
		cat("cat-p22-3", "黒猫", "黒猫 (しっぽ短)", "zone3", "p22"),
		cat("cat-p22-4", "もなか", "三毛 (ハッキリ)", "zone3", "p22"),
		cat("cat-p22-5", "うす茶", "薄茶 (女子)", "zone3", "p22"),
	}
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func members() []roster.Member {
	return []roster.Member{
		{
			ID:               "admin-01",
			Name:             "管理者 (港 太郎)",
			Role:             auth.RoleAdmin,
			PhoneModel:       "iPhone 15 Pro",
			AvailableHours:   "全日 9:00 - 18:00",
			MembershipExpiry: date("2030-12-31"),
			ContactMethod:    "携帯電話 (090-XXXX-XXXX)",
		},
		{
			ID:               "user-01",
			Name:             "ボランティア (猫田 花子)",
			Role:             auth.RoleGeneral,
			PhoneModel:       "Xperia 1 V",
			AvailableHours:   "平日 18:00以降, 土日祝",
			MembershipExpiry: date("2025-03-31"),
			ContactMethod:    "LINE",
		},
		{
			ID:               "user-02",
			Name:             "鈴木 一郎",
			Role:             auth.RoleGeneral,
			PhoneModel:       "AQUOS sense8",
			AvailableHours:   "月・水・金 午前中",
			MembershipExpiry: date("2024-12-31"),
			ContactMethod:    "メール",
		},
	}
}
