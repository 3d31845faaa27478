package mysql

// Schema is applied by tests and by fresh deployments; production changes
// go through migrations.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS hotel_instances (
  id              BIGINT NOT NULL AUTO_INCREMENT,
  hotel_id        VARCHAR(64)  NOT NULL,
  instance_code   VARCHAR(64)  NOT NULL,
  hotel_name      VARCHAR(255) NOT NULL,
  location        VARCHAR(255) NOT NULL DEFAULT '',
  district        VARCHAR(255) NOT NULL DEFAULT '',
  address         VARCHAR(512) NOT NULL DEFAULT '',
  pincode         VARCHAR(16)  NOT NULL DEFAULT '',
  start_date      DATE NOT NULL,
  end_date        DATE NOT NULL,
  total_rooms     INT NOT NULL DEFAULT 0,
  occupied_rooms  INT NOT NULL DEFAULT 0,
  available_rooms INT NOT NULL DEFAULT 0,
  created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_hotel_instance (hotel_id, instance_code),
  KEY idx_hotel (hotel_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS participants (
  id                   BIGINT NOT NULL AUTO_INCREMENT,
  participant_id       VARCHAR(64)  NOT NULL,
  name                 VARCHAR(255) NOT NULL,
  role                 VARCHAR(16)  NOT NULL,
  coach_id             VARCHAR(64)  NOT NULL DEFAULT '',
  mobile               VARCHAR(32)  NOT NULL DEFAULT '',
  hotel_id             VARCHAR(64)  NOT NULL,
  hotel_name           VARCHAR(255) NOT NULL DEFAULT '',
  booking_start_date   DATE NOT NULL,
  booking_end_date     DATE NOT NULL,
  booking_reference    VARCHAR(64)  NOT NULL DEFAULT '',
  checkin_status       VARCHAR(16)  NOT NULL DEFAULT 'pending',
  checkin_time         TIMESTAMP NULL DEFAULT NULL,
  checkout_time        TIMESTAMP NULL DEFAULT NULL,
  actual_checkout_date DATE NULL DEFAULT NULL,
  created_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_participant (participant_id),
  KEY idx_coach (coach_id),
  KEY idx_hotel (hotel_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS coach_users (
  id         BIGINT NOT NULL AUTO_INCREMENT,
  coach_id   VARCHAR(64)  NOT NULL,
  name       VARCHAR(255) NOT NULL DEFAULT '',
  mobile     VARCHAR(32)  NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_coach (coach_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS audit_log (
  id            BIGINT NOT NULL AUTO_INCREMENT,
  entry_id      VARCHAR(64)  NOT NULL,
  user_id       VARCHAR(64)  NOT NULL,
  action_type   VARCHAR(64)  NOT NULL,
  target_entity VARCHAR(64)  NOT NULL,
  target_id     VARCHAR(128) NOT NULL DEFAULT '',
  details       JSON NULL,
  created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_target (target_entity, target_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

const insertInstanceSQL = `
INSERT INTO hotel_instances
  (hotel_id, instance_code, hotel_name, location, district, address, pincode,
   start_date, end_date, total_rooms, occupied_rooms, available_rooms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectInstanceCols = `
SELECT id, hotel_id, instance_code, hotel_name, location, district, address, pincode,
       start_date, end_date, total_rooms, occupied_rooms, available_rooms, created_at
FROM hotel_instances
`

const insertParticipantSQL = `
INSERT INTO participants
  (participant_id, name, role, coach_id, mobile, hotel_id, hotel_name,
   booking_start_date, booking_end_date, booking_reference)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectParticipantCols = `
SELECT id, participant_id, name, role, coach_id, mobile, hotel_id, hotel_name,
       booking_start_date, booking_end_date, booking_reference,
       checkin_status, checkin_time, checkout_time, actual_checkout_date, created_at
FROM participants
`

const updateCheckinStateSQL = `
UPDATE participants
SET checkin_status = ?, checkin_time = ?, checkout_time = ?, actual_checkout_date = ?
WHERE participant_id = ?
`

const insertCoachUserSQL = `
INSERT INTO coach_users (coach_id, name, mobile)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE coach_id = coach_id
`

const insertAuditSQL = `
INSERT INTO audit_log (entry_id, user_id, action_type, target_entity, target_id, details)
VALUES (?, ?, ?, ?, ?, ?)
`

// hotelColumns whitelists patch field names against columns for the
// dynamic UPDATE builders. Anything else is rejected.
var hotelColumns = map[string]string{
	"hotelName":      "hotel_name",
	"location":       "location",
	"district":       "district",
	"address":        "address",
	"pincode":        "pincode",
	"startDate":      "start_date",
	"endDate":        "end_date",
	"totalRooms":     "total_rooms",
	"occupiedRooms":  "occupied_rooms",
	"availableRooms": "available_rooms",
}
