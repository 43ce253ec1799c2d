package storage

type dataSourceRecord struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)"`
	Name        string  `gorm:"type:varchar(255);not null"`
	DBType      string  `gorm:"column:db_type;type:varchar(32);not null"`
	Host        string  `gorm:"type:varchar(255)"`
	Port        int     `gorm:"not null;default:0"`
	Username    string  `gorm:"type:varchar(255)"`
	Password    string  `gorm:"type:text"`
	Database    *string `gorm:"type:varchar(1024)"`
	ExtraParams *string `gorm:"column:extra_params;type:text"`
}

func (dataSourceRecord) TableName() string { return "data_source" }

type codeSampleRecord struct {
	ID      string `gorm:"primaryKey;type:varchar(64)"`
	Name    string `gorm:"type:varchar(255);not null"`
	Content string `gorm:"type:text;not null"`
}

func (codeSampleRecord) TableName() string { return "code_sample" }

type sysConfigRecord struct {
	Key   string `gorm:"column:key;primaryKey;type:varchar(255)"`
	Value string `gorm:"type:text;not null"`
}

func (sysConfigRecord) TableName() string { return "sys_config" }
